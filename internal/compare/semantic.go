// Package compare defines behavioral equivalence between two distilled
// journeys: same externally observable effects (API calls, mutations, form
// submissions, navigation), deliberately coarser than the raw step
// sequence so behavior-preserving refactors still pass.
package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xkilldash9x/voyage-cli/internal/distill"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

// Summary is the semantic extract of one journey, shown side by side in
// comparison reports.
type Summary struct {
	APIs           []string       `json:"apis"`
	APICount       int            `json:"apiCount"`
	Mutations      map[string]int `json:"mutations,omitempty"`
	ErrorEndpoints []string       `json:"errorEndpoints,omitempty"`
	FormSubmits    []string       `json:"formSubmits,omitempty"`
	Navigations    []string       `json:"navigations,omitempty"`
	ContextMenus   []string       `json:"contextMenus,omitempty"`
}

// Options tunes a semantic comparison.
type Options struct {
	// IgnoreAPIs drops calls whose full endpoint contains any of these
	// substrings before comparison.
	IgnoreAPIs []string
}

// Extract computes a journey's semantic summary. Startup API calls are
// excluded: initial-load traffic varies with caching and is not a
// behavioral signal. GET-call counts are likewise not extracted; refresh
// and polling legitimately vary them.
func Extract(j journey.Journey, opts Options) Summary {
	s := Summary{Mutations: make(map[string]int)}
	apiSet := make(map[string]struct{})
	errSet := make(map[string]struct{})

	for i := range j.Steps {
		step := &j.Steps[i]
		if step.Action == journey.ActionStartup {
			continue
		}
		if step.Action == journey.ActionContextMenu && step.Target != nil {
			label := step.Target.Name
			if label == "" {
				label = step.Target.Label
			}
			s.ContextMenus = append(s.ContextMenus, label)
		}
		if step.IsSubmission() {
			s.FormSubmits = append(s.FormSubmits, formIdentity(step.Target))
		}
		for _, a := range step.Awaits {
			switch a.Kind {
			case journey.AwaitNavigation:
				if n := len(s.Navigations); n == 0 || s.Navigations[n-1] != a.To {
					s.Navigations = append(s.Navigations, a.To)
				}
			case journey.AwaitAPI:
				if ignored(a.Endpoint, opts.IgnoreAPIs) {
					continue
				}
				path := distill.StripQuery(a.Endpoint)
				apiSet[a.Method+" "+path] = struct{}{}
				if journey.IsMutating(a.Method) {
					s.Mutations[path]++
				}
				if a.Failed {
					errSet[path] = struct{}{}
				}
			}
		}
	}

	s.APIs = sortedKeys(apiSet)
	s.APICount = len(s.APIs)
	s.ErrorEndpoints = sortedKeys(errSet)
	return s
}

// formIdentity renders a submission as a stable, comparable string: the
// form's accessible identity plus its sorted field values.
func formIdentity(t *journey.Target) string {
	name := t.Name
	if name == "" {
		name = t.Label
	}
	fields := make([]string, 0, len(t.FormData))
	for k, v := range t.FormData {
		fields = append(fields, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(fields)
	return name + "{" + strings.Join(fields, ",") + "}"
}

func ignored(endpoint string, ignoreList []string) bool {
	for _, frag := range ignoreList {
		if frag != "" && strings.Contains(endpoint, frag) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Semantic compares two journeys by their observable effects. All criteria
// must hold for a match: equal API sets, equal per-endpoint mutation
// counts, equal error-endpoint sets, positionally equal form submissions,
// equal navigation sequences, and equal context-menu target sets. Timing,
// DOM structure, in-step ordering and GET-call counts are explicitly not
// compared.
func Semantic(a, b journey.Journey, opts Options) Report {
	before := Extract(a, opts)
	after := Extract(b, opts)
	r := Report{Before: before, After: after}

	diffStringSets(&r, DiffAPISet, "api", before.APIs, after.APIs)

	for _, endpoint := range sortedKeys(unionKeys(before.Mutations, after.Mutations)) {
		cb, ca := before.Mutations[endpoint], after.Mutations[endpoint]
		if cb != ca {
			r.add(Difference{
				Kind:    DiffMutationCount,
				Subject: endpoint,
				Detail:  fmt.Sprintf("mutation count for %s changed from %d to %d", endpoint, cb, ca),
			})
		}
	}

	diffStringSets(&r, DiffErrorSet, "error endpoint", before.ErrorEndpoints, after.ErrorEndpoints)

	if len(before.FormSubmits) != len(after.FormSubmits) {
		r.add(Difference{
			Kind:   DiffFormSubmission,
			Detail: fmt.Sprintf("form submission count changed from %d to %d", len(before.FormSubmits), len(after.FormSubmits)),
		})
	} else {
		for i := range before.FormSubmits {
			if before.FormSubmits[i] != after.FormSubmits[i] {
				r.add(Difference{
					Kind:    DiffFormSubmission,
					Subject: fmt.Sprintf("#%d", i+1),
					Detail:  fmt.Sprintf("form submission %d changed from %s to %s", i+1, before.FormSubmits[i], after.FormSubmits[i]),
				})
			}
		}
	}

	if !equalSlices(before.Navigations, after.Navigations) {
		r.add(Difference{
			Kind:   DiffNavigation,
			Detail: fmt.Sprintf("navigations changed from %v to %v", before.Navigations, after.Navigations),
		})
	}

	diffStringSets(&r, DiffContextMenu, "context menu target", asSet(before.ContextMenus), asSet(after.ContextMenus))

	r.Match = len(r.Differences) == 0
	return r
}

// Structural compares two journeys step by step: step count, actions,
// targets and await sets. Stricter than Semantic; used when the caller
// wants to know the sequences themselves diverged.
func Structural(a, b journey.Journey) Report {
	r := Report{Before: Extract(a, Options{}), After: Extract(b, Options{})}

	if len(a.Steps) != len(b.Steps) {
		r.add(Difference{
			Kind:   DiffStepCount,
			Detail: fmt.Sprintf("step count changed from %d to %d", len(a.Steps), len(b.Steps)),
		})
	}
	n := min(len(a.Steps), len(b.Steps))
	for i := 0; i < n; i++ {
		sa, sb := &a.Steps[i], &b.Steps[i]
		if sa.Action != sb.Action {
			r.add(Difference{
				Kind:    DiffAction,
				Subject: fmt.Sprintf("step %d", i),
				Detail:  fmt.Sprintf("step %d action changed from %s to %s", i, sa.Action, sb.Action),
			})
			continue
		}
		if !journey.SameTarget(sa.Target, sb.Target) {
			r.add(Difference{
				Kind:    DiffTarget,
				Subject: fmt.Sprintf("step %d", i),
				Detail:  fmt.Sprintf("step %d target changed", i),
			})
		}
		if !equalSlices(awaitSet(sa), awaitSet(sb)) {
			r.add(Difference{
				Kind:    DiffAwaitSet,
				Subject: fmt.Sprintf("step %d", i),
				Detail:  fmt.Sprintf("step %d awaits changed", i),
			})
		}
	}

	r.Match = len(r.Differences) == 0
	return r
}

// awaitSet renders a step's awaits order-independently.
func awaitSet(s *journey.Step) []string {
	out := make([]string, 0, len(s.Awaits))
	for _, a := range s.Awaits {
		switch a.Kind {
		case journey.AwaitAPI:
			out = append(out, fmt.Sprintf("api %s %s %d", a.Method, distill.StripQuery(a.Endpoint), a.Status))
		case journey.AwaitNavigation:
			out = append(out, fmt.Sprintf("nav %s -> %s", a.From, a.To))
		case journey.AwaitState:
			out = append(out, "state "+a.Path)
		}
	}
	sort.Strings(out)
	return out
}

func diffStringSets(r *Report, kind DiffKind, label string, before, after []string) {
	bSet := make(map[string]struct{}, len(before))
	for _, s := range before {
		bSet[s] = struct{}{}
	}
	aSet := make(map[string]struct{}, len(after))
	for _, s := range after {
		aSet[s] = struct{}{}
	}
	for _, s := range before {
		if _, ok := aSet[s]; !ok {
			r.add(Difference{Kind: kind, Subject: s, Detail: fmt.Sprintf("%s %s disappeared", label, s)})
		}
	}
	for _, s := range after {
		if _, ok := bSet[s]; !ok {
			r.add(Difference{Kind: kind, Subject: s, Detail: fmt.Sprintf("%s %s appeared", label, s)})
		}
	}
}

func unionKeys(a, b map[string]int) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func asSet(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return sortedKeys(set)
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
