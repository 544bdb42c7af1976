package trace

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// labelFields are the argument keys commonly carrying a human-readable item
// name, in lookup order.
var labelFields = []string{"displayName", "name", "label", "itemName", "title", "path"}

// truncatedStringRe pulls a quoted string value for a named key out of a
// JSON blob that was cut off mid-stream by the capture buffer. Partial
// information is preferred over dropping the whole record.
var truncatedStringRe = regexp.MustCompile(`"(?:displayName|name|label|itemName|title|path)"\s*:\s*"((?:[^"\\]|\\.)*)`)

// ExtractDisplayName pulls the best available display-name field from a
// handler argument payload. The payload may be a JSON object, a JSON array
// of arguments, or a truncated fragment of either; extraction degrades
// gracefully rather than failing.
func ExtractDisplayName(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if gjson.ValidBytes(raw) {
		parsed := gjson.ParseBytes(raw)
		if name := displayNameOf(parsed); name != "" {
			return name
		}
		return ""
	}
	// Truncated payload: best-effort pattern match.
	if m := truncatedStringRe.FindSubmatch(raw); m != nil {
		return unescape(string(m[1]))
	}
	return ""
}

func displayNameOf(v gjson.Result) string {
	if v.IsArray() {
		for _, el := range v.Array() {
			if name := displayNameOf(el); name != "" {
				return name
			}
		}
		return ""
	}
	for _, field := range labelFields {
		if f := v.Get(field); f.Exists() && f.Type == gjson.String && f.String() != "" {
			return f.String()
		}
	}
	return ""
}

// ExtractFormData interprets a handler argument payload as a field-value
// map. Arrays are scanned for their first object element. Returns nil when
// no usable object is present.
func ExtractFormData(raw []byte) map[string]any {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	v := gjson.ParseBytes(raw)
	if v.IsArray() {
		for _, el := range v.Array() {
			if el.IsObject() {
				v = el
				break
			}
		}
	}
	if !v.IsObject() {
		return nil
	}
	out := make(map[string]any)
	v.ForEach(func(key, val gjson.Result) bool {
		out[key.String()] = val.Value()
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func unescape(s string) string {
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}
