package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/voyage-cli/internal/config"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

func replayConfig() config.ReplayConfig {
	return config.NewDefaultConfig().Replay
}

func TestMatchScoreOrdering(t *testing.T) {
	t.Parallel()
	cfg := replayConfig()

	exact := matchScore("New Name", "newName", cfg)
	substring := matchScore("New file name", "name", cfg)
	words := matchScore("Display name", "nameOfItem", cfg)
	none := matchScore("Search", "overwrite", cfg)

	assert.Equal(t, cfg.ScoreExact, exact, "normalization strips case and spacing")
	assert.Greater(t, exact, substring)
	assert.Greater(t, substring, words)
	assert.Greater(t, words, 0)
	assert.Zero(t, none)
}

func TestMatchScoreSubstringPrefersLongerFieldNames(t *testing.T) {
	t.Parallel()
	cfg := replayConfig()

	short := matchScore("The target folder name", "name", cfg)
	long := matchScore("The target folder name", "folderName", cfg)
	assert.Greater(t, long, short, "longer contained field name is the more specific match")
}

func TestBuildFillPlanAssignsBestField(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("New name", "b"),
		keystroke("New name", "a"),
		submission("Rename", map[string]any{
			"name":      "bar.txt",
			"overwrite": true, // non-string, never planned
		}),
	}

	plan := BuildFillPlan(steps, replayConfig())
	v, ok := plan.Next("New name")
	require.True(t, ok)
	assert.Equal(t, "name", v.Field)
	assert.Equal(t, "bar.txt", v.Value)

	_, ok = plan.Next("New name")
	assert.False(t, ok, "repeated keystrokes on one form plan a single fill")
}

func TestBuildFillPlanClaimsFieldsPerSubmission(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("User name", "u"),
		keystroke("Full name", "f"),
		submission("Create", map[string]any{
			"userName": "udo",
			"fullName": "Udo Fuchs",
		}),
	}

	plan := BuildFillPlan(steps, replayConfig())

	u, ok := plan.Next("User name")
	require.True(t, ok)
	assert.Equal(t, "udo", u.Value)

	f, ok := plan.Next("Full name")
	require.True(t, ok)
	assert.Equal(t, "Udo Fuchs", f.Value)
}

func TestBuildFillPlanQueuesRepeatedForms(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("New name", "a"),
		submission("Rename", map[string]any{"name": "first.txt"}),
		keystroke("New name", "b"),
		submission("Rename", map[string]any{"name": "second.txt"}),
	}

	plan := BuildFillPlan(steps, replayConfig())

	first, ok := plan.Next("New name")
	require.True(t, ok)
	assert.Equal(t, "first.txt", first.Value)

	second, ok := plan.Next("New name")
	require.True(t, ok)
	assert.Equal(t, "second.txt", second.Value)

	_, ok = plan.Next("New name")
	assert.False(t, ok)
}

func TestBuildFillPlanSkipsUnmatchedKeystrokes(t *testing.T) {
	t.Parallel()

	steps := []journey.Step{
		keystroke("Completely unrelated", "x"),
		submission("Save", map[string]any{"zz": "1"}),
	}

	plan := BuildFillPlan(steps, replayConfig())
	_, ok := plan.Next("Completely unrelated")
	assert.False(t, ok)
}

func TestSplitWords(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want []string
	}{
		{"newFileName", []string{"new", "file", "name"}},
		{"New name", []string{"new", "name"}},
		{"HTTPStatus", []string{"httpstatus"}},
		{"a_b-c", []string{"a", "b", "c"}},
		{"", nil},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, splitWords(tc.in), "input %q", tc.in)
	}
}
