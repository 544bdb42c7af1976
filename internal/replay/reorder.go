// Package replay turns a distilled journey back into an executable
// automation script, repairing interleaving artifacts from asynchronous
// form interactions along the way.
package replay

import (
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

// A user typing into a modal form may, mid-typing, also trigger background
// clicks; the trace records all of it chronologically interleaved. Replay
// must finish the form before touching background elements, or it will hit
// elements still obscured by the modal.

// ReorderFormSteps repairs interleaved form sequences. For each text-field
// keystroke step it locates the next submission; if a non-keystroke step
// sits between them with a later keystroke on the same field after it, the
// in-between steps are partitioned: same-field continuation keystrokes stay
// contiguous after the first keystroke, everything else moves to
// immediately after the submission, preserving relative order. Sequences
// that are not interleaved come back untouched.
func ReorderFormSteps(steps []journey.Step) []journey.Step {
	out := make([]journey.Step, len(steps))
	copy(out, steps)

	// Every keystroke step is examined in turn: a form may interleave on its
	// second field even when its first is clean, and displaced steps can
	// themselves be keystrokes belonging to a later form. A repaired field's
	// keystrokes sit contiguously before their submission afterwards, so
	// re-examining them is a no-op and the loop terminates.
	for i := 0; i < len(out); i++ {
		if !out[i].IsKeystroke() {
			continue
		}
		field := out[i].FieldName()
		sub := nextSubmission(out, i+1)
		if sub < 0 {
			continue
		}
		if !interleaved(out, i, sub, field) {
			continue
		}

		between := out[i+1 : sub]
		var kept, displaced []journey.Step
		for _, s := range between {
			if s.IsKeystroke() && s.FieldName() == field {
				kept = append(kept, s)
			} else {
				displaced = append(displaced, s)
			}
		}

		repaired := make([]journey.Step, 0, len(out))
		repaired = append(repaired, out[:i+1]...)
		repaired = append(repaired, kept...)
		repaired = append(repaired, out[sub])
		repaired = append(repaired, displaced...)
		repaired = append(repaired, out[sub+1:]...)
		out = repaired
	}
	return out
}

// interleaved detects a background action during typing: a non-keystroke
// step strictly between the keystroke and its submission, followed by a
// later keystroke on the same field.
func interleaved(steps []journey.Step, keystroke, submission int, field string) bool {
	for p := keystroke + 1; p < submission; p++ {
		s := &steps[p]
		if s.IsKeystroke() && s.FieldName() == field {
			continue
		}
		for q := p + 1; q < submission; q++ {
			later := &steps[q]
			if later.IsKeystroke() && later.FieldName() == field {
				return true
			}
		}
		return false
	}
	return false
}

func nextSubmission(steps []journey.Step, from int) int {
	for i := from; i < len(steps); i++ {
		if steps[i].IsSubmission() {
			return i
		}
	}
	return -1
}
