package compare

import (
	"fmt"
	"strings"
)

// DiffKind classifies one comparison difference.
type DiffKind string

const (
	// Structural kinds.
	DiffStepCount DiffKind = "step-count mismatch"
	DiffAction    DiffKind = "action mismatch"
	DiffTarget    DiffKind = "target mismatch"
	DiffAwaitSet  DiffKind = "await-set mismatch"

	// Semantic kinds.
	DiffAPISet         DiffKind = "api-set mismatch"
	DiffMutationCount  DiffKind = "mutation-count mismatch"
	DiffErrorSet       DiffKind = "error-set mismatch"
	DiffFormSubmission DiffKind = "form-submission mismatch"
	DiffNavigation     DiffKind = "navigation mismatch"
	DiffContextMenu    DiffKind = "context-menu mismatch"
)

// Difference is one itemized comparison finding. Subject names the entity
// that diverged (an endpoint, a step index); Detail is human-readable.
type Difference struct {
	Kind    DiffKind `json:"kind"`
	Subject string   `json:"subject,omitempty"`
	Detail  string   `json:"detail"`
}

// Report is the result of comparing two journeys. A mismatch is not an
// error: the caller decides pass/fail policy.
type Report struct {
	Match       bool         `json:"match"`
	Differences []Difference `json:"differences,omitempty"`
	Before      Summary      `json:"before"`
	After       Summary      `json:"after"`
}

func (r *Report) add(d Difference) {
	r.Differences = append(r.Differences, d)
}

// Render produces the human-readable form of the report: verdict,
// itemized differences, and the two semantic summaries side by side.
func (r *Report) Render() string {
	var b strings.Builder
	if r.Match {
		b.WriteString("MATCH: journeys are semantically equivalent\n")
	} else {
		fmt.Fprintf(&b, "MISMATCH: %d difference(s)\n", len(r.Differences))
		for _, d := range r.Differences {
			fmt.Fprintf(&b, "  [%s] %s\n", d.Kind, d.Detail)
		}
	}
	b.WriteString("\n--- before ---\n")
	renderSummary(&b, r.Before)
	b.WriteString("\n--- after ---\n")
	renderSummary(&b, r.After)
	return b.String()
}

func renderSummary(b *strings.Builder, s Summary) {
	fmt.Fprintf(b, "apis (%d):\n", s.APICount)
	for _, api := range s.APIs {
		count := ""
		if _, path, ok := strings.Cut(api, " "); ok {
			if n := s.Mutations[path]; n > 0 {
				count = fmt.Sprintf("  x%d", n)
			}
		}
		fmt.Fprintf(b, "  %s%s\n", api, count)
	}
	if len(s.ErrorEndpoints) > 0 {
		fmt.Fprintf(b, "error endpoints: %s\n", strings.Join(s.ErrorEndpoints, ", "))
	}
	fmt.Fprintf(b, "form submissions (%d):\n", len(s.FormSubmits))
	for _, f := range s.FormSubmits {
		fmt.Fprintf(b, "  %s\n", f)
	}
	if len(s.Navigations) > 0 {
		fmt.Fprintf(b, "navigations: %s\n", strings.Join(s.Navigations, " -> "))
	}
	if len(s.ContextMenus) > 0 {
		fmt.Fprintf(b, "context menus: %s\n", strings.Join(s.ContextMenus, ", "))
	}
}
