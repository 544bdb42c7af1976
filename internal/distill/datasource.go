package distill

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xkilldash9x/voyage-cli/internal/journey"
	"github.com/xkilldash9x/voyage-cli/internal/trace"
)

// dataSourcePrefix marks state-diff paths carrying collection snapshots.
const dataSourcePrefix = "DataSource:"

// snapshotLabelFields are tried in order when deriving an item's display
// label from a snapshot element.
var snapshotLabelFields = []string{"name", "displayName", "title", "label", "filename"}

// SnapshotTracker watches consecutive snapshots of named data collections
// and computes added/removed item lists. It is single-pass mutable state
// scoped to one journey's distillation.
type SnapshotTracker struct {
	prev          map[string][]string
	maxLabelChars int
}

// NewSnapshotTracker returns an empty tracker. maxLabelChars caps labels
// derived from arbitrary string fields.
func NewSnapshotTracker(maxLabelChars int) *SnapshotTracker {
	return &SnapshotTracker{
		prev:          make(map[string][]string),
		maxLabelChars: maxLabelChars,
	}
}

// Observe records the snapshots carried by a bucket's state-change events
// and, when attach is true (the step carries a mutating call), returns the
// non-empty diffs against the previous snapshots. Pure refresh steps update
// the baseline without producing diffs: pagination and re-sorting churn
// snapshots in ways that are not assertion-worthy.
func (t *SnapshotTracker) Observe(events []trace.Event, attach bool) map[string]journey.DataSourceChange {
	var changes map[string]journey.DataSourceChange
	for i := range events {
		e := &events[i]
		if e.Kind != trace.KindStateChanges {
			continue
		}
		for _, diff := range e.DiffJSON {
			if !strings.HasPrefix(diff.Path, dataSourcePrefix) {
				continue
			}
			items, ok := diff.After.([]any)
			if !ok {
				continue
			}
			collection := strings.TrimPrefix(diff.Path, dataSourcePrefix)
			labels := t.labelItems(items)
			if attach {
				added := missingFrom(labels, t.prev[collection])
				removed := missingFrom(t.prev[collection], labels)
				if len(added) > 0 || len(removed) > 0 {
					if changes == nil {
						changes = make(map[string]journey.DataSourceChange)
					}
					changes[collection] = journey.DataSourceChange{Added: added, Removed: removed}
				}
			}
			t.prev[collection] = labels
		}
	}
	return changes
}

func (t *SnapshotTracker) labelItems(items []any) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, t.labelOf(item))
	}
	return labels
}

// labelOf derives a display label for one snapshot item: the common label
// fields first, then the first short string field in key order, then a
// plain rendering.
func (t *SnapshotTracker) labelOf(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return fmt.Sprint(item)
	}
	for _, field := range snapshotLabelFields {
		if s, ok := m[field].(string); ok && s != "" {
			return s
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" && len(s) <= t.maxLabelChars {
			return s
		}
	}
	return fmt.Sprint(m)
}

// missingFrom returns the elements of a that do not occur in b, preserving
// a's order.
func missingFrom(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
