package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDisplayName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"object with displayName", `{"displayName":"foo.txt","size":12}`, "foo.txt"},
		{"object with name", `{"name":"bar.txt"}`, "bar.txt"},
		{"field priority", `{"name":"second","displayName":"first"}`, "first"},
		{"array of args", `[{"id":1},{"label":"Rename"}]`, "Rename"},
		{"nested non-string ignored", `{"name":42,"title":"Report"}`, "Report"},
		{"no label field", `{"id":7,"count":3}`, ""},
		{"empty payload", ``, ""},
		{"truncated mid-value", `[{"itemName":"quarterly-rep`, "quarterly-rep"},
		{"truncated with escape", `{"name":"a \"b\" c`, `a "b" c`},
		{"truncated without label field", `[{"id":12,"si`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ExtractDisplayName([]byte(tc.raw)))
		})
	}
}

func TestExtractFormData(t *testing.T) {
	t.Parallel()

	t.Run("plain object", func(t *testing.T) {
		t.Parallel()
		data := ExtractFormData([]byte(`{"name":"bar.txt","overwrite":true}`))
		assert.Equal(t, map[string]any{"name": "bar.txt", "overwrite": true}, data)
	})

	t.Run("first object in argument array", func(t *testing.T) {
		t.Parallel()
		data := ExtractFormData([]byte(`["submit",{"name":"bar.txt"}]`))
		assert.Equal(t, map[string]any{"name": "bar.txt"}, data)
	})

	t.Run("no object present", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, ExtractFormData([]byte(`["a","b"]`)))
	})

	t.Run("truncated payload yields nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, ExtractFormData([]byte(`{"name":"ba`)))
	})

	t.Run("empty object yields nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, ExtractFormData([]byte(`{}`)))
	})
}
