package distill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMethod(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		field    string
		url      string
		expected string
	}{
		{"bare verb lowercase", "get", "", "GET"},
		{"bare verb uppercase", "DELETE", "/api/files/x", "DELETE"},
		{"bare verb mixed case", "Put", "", "PUT"},
		{"ternary, param matches literal", "{$q.p == 'v' ? 'POST' : 'PUT'}", "/api/items?p=v", "POST"},
		{"ternary, param differs from literal", "{$q.p == 'v' ? 'POST' : 'PUT'}", "/api/items?p=w", "PUT"},
		{"ternary without braces", "$q.mode == 'copy' ? 'POST' : 'PATCH'", "/api/items?mode=copy", "POST"},
		{"ternary, param absent, shallow path", "{$q.new == 'true' ? 'POST' : 'PUT'}", "/api/items", "POST"},
		{"ternary, param absent, deep path implies edit", "{$q.new == 'true' ? 'POST' : 'PUT'}", "/api/items/42", "PUT"},
		{"ternary, param absent, non-create literal defaults to first verb", "{$q.mode == 'x' ? 'POST' : 'PUT'}", "/api/a/b/c", "POST"},
		{"ternary, no url", "{$q.new == 'true' ? 'POST' : 'PUT'}", "", "POST"},
		{"verb embedded in expression", "method || 'PATCH'", "", "PATCH"},
		{"unrecognizable input echoed", "doTheThing()", "/api/x", "doTheThing()"},
		{"empty input echoed", "", "/api/x", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ResolveMethod(tc.field, tc.url))
		})
	}
}

func TestResolveMethodIsPure(t *testing.T) {
	t.Parallel()
	field := "{$q.new == 'true' ? 'POST' : 'PUT'}"
	first := ResolveMethod(field, "/api/items/42")
	second := ResolveMethod(field, "/api/items/42")
	assert.Equal(t, first, second)
}

func TestStripQuery(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/api/files", StripQuery("/api/files?page=2"))
	assert.Equal(t, "/api/files", StripQuery("/api/files"))
}
