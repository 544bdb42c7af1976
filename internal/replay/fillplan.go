package replay

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xkilldash9x/voyage-cli/internal/config"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
)

// FillValue is one planned field fill: the submission field it came from
// and the value to type.
type FillValue struct {
	Field string
	Value string
}

// FillPlan maps an accessible field name to a queue of values, built by
// correlating keystroke steps with the nearest subsequent submission. The
// queue supports the same field being filled twice in one journey (two
// sequential renames); each use consumes the queue head. The plan is
// consumed once during script generation, then discarded.
type FillPlan struct {
	queues map[string][]FillValue
}

// Next pops the planned value for an accessible name.
func (p *FillPlan) Next(name string) (FillValue, bool) {
	q := p.queues[name]
	if len(q) == 0 {
		return FillValue{}, false
	}
	p.queues[name] = q[1:]
	return q[0], true
}

// BuildFillPlan scores each string-valued field of the nearest following
// submission against every keystroke step's accessible name and assigns the
// best-scoring unclaimed field to it.
func BuildFillPlan(steps []journey.Step, cfg config.ReplayConfig) *FillPlan {
	plan := &FillPlan{queues: make(map[string][]FillValue)}
	// claimed tracks fields already assigned, keyed per submission index.
	claimed := make(map[int]map[string]bool)
	// planned suppresses duplicate queue entries for repeated keystrokes on
	// the same field of the same form.
	planned := make(map[string]bool)

	for i := range steps {
		s := &steps[i]
		if !s.IsKeystroke() {
			continue
		}
		name := s.FieldName()
		if name == "" {
			continue
		}
		sub := nextSubmission(steps, i+1)
		if sub < 0 {
			continue
		}
		dupKey := fmt.Sprintf("%d/%s", sub, name)
		if planned[dupKey] {
			continue
		}

		if claimed[sub] == nil {
			claimed[sub] = make(map[string]bool)
		}
		best, bestScore := "", 0
		for field, v := range steps[sub].Target.FormData {
			if _, ok := v.(string); !ok {
				continue
			}
			if claimed[sub][field] {
				continue
			}
			if score := matchScore(name, field, cfg); score > bestScore {
				best, bestScore = field, score
			}
		}
		if best == "" {
			continue
		}
		claimed[sub][best] = true
		planned[dupKey] = true
		value, _ := steps[sub].Target.FormData[best].(string)
		plan.queues[name] = append(plan.queues[name], FillValue{Field: best, Value: value})
	}
	return plan
}

// matchScore rates how well a submission field name matches an accessible
// name: exact normalized match beats substring containment (weighted by
// field-name length) beats camelCase word overlap (weighted by matched
// character count).
func matchScore(accessibleName, fieldName string, cfg config.ReplayConfig) int {
	an := normalizeName(accessibleName)
	fn := normalizeName(fieldName)
	if an == "" || fn == "" {
		return 0
	}
	if an == fn {
		return cfg.ScoreExact
	}
	if strings.Contains(an, fn) || strings.Contains(fn, an) {
		return cfg.ScoreSubstring + len(fn)
	}

	matched := 0
	accessibleWords := make(map[string]bool)
	for _, w := range splitWords(accessibleName) {
		accessibleWords[w] = true
	}
	for _, w := range splitWords(fieldName) {
		if accessibleWords[w] {
			matched += len(w)
		}
	}
	if matched == 0 {
		return 0
	}
	return cfg.ScoreWordBase * matched
}

// normalizeName lowercases and strips everything but letters and digits.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// splitWords splits on camelCase boundaries and non-alphanumeric runs.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && prev != 0 && !unicode.IsUpper(prev):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
		prev = r
	}
	flush()
	return words
}
