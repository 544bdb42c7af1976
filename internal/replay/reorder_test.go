package replay

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

func keystroke(field, key string) journey.Step {
	return journey.Step{
		Action: journey.ActionKeyPress,
		Target: &journey.Target{Role: "textbox", Name: field, Key: key},
	}
}

func submission(name string, formData map[string]any) journey.Step {
	return journey.Step{
		Action: journey.ActionClick,
		Target: &journey.Target{Role: "button", Name: name, FormData: formData},
	}
}

func buttonClick(name string) journey.Step {
	return journey.Step{
		Action: journey.ActionClick,
		Target: &journey.Target{Role: "button", Name: name},
	}
}

// stepKeys flattens steps to comparable identity strings for multiset
// assertions.
func stepKeys(steps []journey.Step) []string {
	keys := make([]string, 0, len(steps))
	for _, s := range steps {
		key := string(s.Action)
		if s.Target != nil {
			key += "/" + s.Target.Name + "/" + s.Target.Key
		}
		keys = append(keys, key)
	}
	return keys
}

func TestReorderMovesBackgroundClickAfterSubmission(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		{Action: journey.ActionStartup},
		keystroke("New name", "b"),
		keystroke("New name", "a"),
		buttonClick("Toggle sidebar"), // background click mid-typing
		keystroke("New name", "r"),
		submission("Rename", map[string]any{"name": "bar"}),
		buttonClick("Close"),
	}

	got := ReorderFormSteps(steps)
	want := []journey.Step{
		steps[0],
		steps[1], steps[2], steps[4], // typing kept contiguous
		steps[5],                     // submission
		steps[3],                     // displaced background click
		steps[6],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestReorderPreservesStepMultiset(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("Title", "a"),
		buttonClick("Background"),
		keystroke("Title", "b"),
		buttonClick("Another"),
		keystroke("Title", "c"),
		submission("Save", map[string]any{"title": "abc"}),
	}

	got := ReorderFormSteps(steps)
	require.Len(t, got, len(steps))

	wantKeys := stepKeys(steps)
	gotKeys := stepKeys(got)
	sort.Strings(wantKeys)
	sort.Strings(gotKeys)
	assert.Equal(t, wantKeys, gotKeys, "reordering must never drop or duplicate steps")
}

func TestReorderLeavesCleanSequencesAlone(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		steps []journey.Step
	}{
		{
			"contiguous typing then submit",
			[]journey.Step{
				keystroke("New name", "b"),
				keystroke("New name", "a"),
				submission("Rename", map[string]any{"name": "ba"}),
			},
		},
		{
			"no submission at all",
			[]journey.Step{
				keystroke("Search", "x"),
				buttonClick("Elsewhere"),
			},
		},
		{
			"foreign step after typing but no later same-field keystroke",
			[]journey.Step{
				keystroke("New name", "b"),
				buttonClick("Pick suggestion"),
				submission("Rename", map[string]any{"name": "b"}),
			},
		},
		{
			"no keystrokes",
			[]journey.Step{
				buttonClick("Open"),
				submission("Save", map[string]any{"x": "1"}),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ReorderFormSteps(tc.steps)
			if diff := cmp.Diff(tc.steps, got); diff != "" {
				t.Fatalf("sequence should be untouched (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReorderRepairsSecondFieldOfForm(t *testing.T) {
	t.Parallel()

	// The first field is typed cleanly; the background click interrupts the
	// second field. Every keystroke must be examined, not just the first.
	steps := []journey.Step{
		keystroke("Name", "a"),
		keystroke("Description", "x"),
		buttonClick("Background"),
		keystroke("Description", "y"),
		submission("Save", map[string]any{"name": "a", "description": "xy"}),
	}

	got := ReorderFormSteps(steps)
	want := []journey.Step{
		steps[0],
		steps[1], steps[3], // second field's typing made contiguous
		steps[4],
		steps[2], // background click displaced after the submission
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestReorderRepairsFieldsAfterADisplacedKeystroke(t *testing.T) {
	t.Parallel()

	// The first repair displaces a foreign keystroke past the submission; the
	// loop must keep examining rather than skipping over the displaced tail.
	steps := []journey.Step{
		keystroke("Title", "a"),
		keystroke("Search", "q"),
		keystroke("Title", "b"),
		submission("Create", map[string]any{"title": "ab"}),
		buttonClick("Dismiss"),
		keystroke("Search", "r"),
		submission("Go", map[string]any{"search": "qr"}),
	}

	got := ReorderFormSteps(steps)
	require.Len(t, got, len(steps))

	wantKeys := stepKeys(steps)
	gotKeys := stepKeys(got)
	sort.Strings(wantKeys)
	sort.Strings(gotKeys)
	assert.Equal(t, wantKeys, gotKeys)

	// Title typing is contiguous before its submission.
	assert.Equal(t, "Title", got[0].FieldName())
	assert.Equal(t, "Title", got[1].FieldName())
	assert.True(t, got[2].IsSubmission())
}

func TestReorderHandlesTwoFormsSequentially(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("First", "a"),
		buttonClick("Noise one"),
		keystroke("First", "b"),
		submission("Save first", map[string]any{"first": "ab"}),
		keystroke("Second", "c"),
		buttonClick("Noise two"),
		keystroke("Second", "d"),
		submission("Save second", map[string]any{"second": "cd"}),
	}

	got := ReorderFormSteps(steps)
	require.Len(t, got, len(steps))

	want := []journey.Step{
		steps[0], steps[2], steps[3], steps[1],
		steps[4], steps[6], steps[7], steps[5],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestReorderDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("Name", "a"),
		buttonClick("Noise"),
		keystroke("Name", "b"),
		submission("Save", map[string]any{"name": "ab"}),
	}
	original := make([]journey.Step, len(steps))
	copy(original, steps)

	_ = ReorderFormSteps(steps)
	if diff := cmp.Diff(original, steps); diff != "" {
		t.Fatalf("input slice mutated (-want +got):\n%s", diff)
	}
}
