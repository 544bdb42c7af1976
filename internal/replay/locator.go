package replay

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

// locatorKind records which rung of the priority ladder produced a locator.
type locatorKind int

const (
	locatorNone locatorKind = iota
	locatorRole
	locatorRow
	locatorText
	locatorTestID
)

type locator struct {
	expr string
	kind locatorKind
}

// iconTags are decorative glyph elements; a click landing on one of these
// inside a tree item hit the expand toggle, not the label.
var iconTags = map[string]bool{"I": true, "SVG": true, "PATH": true}

// resolveLocator derives a Playwright locator for a target using the
// priority order: accessible role+name (unless the role is structural
// noise), a row locator matched by contained cell text, a text fallback,
// and a stable test id as last resort. Returns ok=false when nothing
// usable exists: an accessibility gap, surfaced by the caller rather than
// hidden.
func (g *Generator) resolveLocator(t *journey.Target) (locator, bool) {
	if t == nil {
		return locator{}, false
	}

	if t.Role == "row" {
		text := t.Name
		if text == "" {
			text = t.Label
		}
		if text != "" {
			return locator{
				expr: fmt.Sprintf("page.getByRole('row').filter({ hasText: %s })", jsString(text)),
				kind: locatorRow,
			}, true
		}
	}

	if t.Role != "" && t.Name != "" && !g.noiseRoles[t.Role] {
		return locator{
			expr: fmt.Sprintf("page.getByRole(%s, { name: %s })", jsString(t.Role), jsString(t.Name)),
			kind: locatorRole,
		}, true
	}

	if t.Role == "" && t.Label != "" {
		return locator{
			expr: fmt.Sprintf("page.getByText(%s, { exact: true })", jsString(t.Label)),
			kind: locatorText,
		}, true
	}

	if t.TestID != "" {
		return locator{
			expr: fmt.Sprintf("page.getByTestId(%s)", jsString(t.TestID)),
			kind: locatorTestID,
		}, true
	}

	if t.Label != "" {
		return locator{
			expr: fmt.Sprintf("page.getByText(%s, { exact: true })", jsString(t.Label)),
			kind: locatorText,
		}, true
	}

	return locator{}, false
}

// isExpandToggle reports whether a tree-item click landed on the expand
// toggle glyph rather than the label.
func isExpandToggle(t *journey.Target) bool {
	return t != nil && t.Role == "treeitem" && iconTags[strings.ToUpper(t.Tag)]
}

// jsString renders a Go string as a single-quoted JavaScript literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// modifierList renders held modifiers as a Playwright modifiers array.
func modifierList(m journey.Modifiers) string {
	var mods []string
	if m.Ctrl {
		mods = append(mods, "'Control'")
	}
	if m.Shift {
		mods = append(mods, "'Shift'")
	}
	if m.Meta {
		mods = append(mods, "'Meta'")
	}
	if m.Alt {
		mods = append(mods, "'Alt'")
	}
	if len(mods) == 0 {
		return ""
	}
	return "[" + strings.Join(mods, ", ") + "]"
}
