// Package distill turns a normalized event stream into the ordered Step
// sequence of a journey.
package distill

import (
	"net/url"
	"regexp"
	"strings"
)

// The source application sometimes logs unevaluated UI-binding expressions
// instead of the runtime-resolved HTTP verb, e.g.
// "{$q.new == 'true' ? 'POST' : 'PUT'}". ResolveMethod recovers the true
// verb for comparison purposes.

var (
	bareVerbRe = regexp.MustCompile(`(?i)^(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)$`)
	anyVerbRe  = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b`)
	// Ternary template referencing a query parameter:
	//   param == 'literal' ? 'verbA' : 'verbB'
	// with optional surrounding braces and an optional $q./$query. prefix.
	ternaryRe = regexp.MustCompile(`(?:\$\w+\.)?([\w-]+)\s*==\s*'([^']*)'\s*\?\s*'([\w-]+)'\s*:\s*'([\w-]+)'`)
)

// ResolveMethod resolves a method field to a concrete uppercase HTTP verb
// using the call URL as context. It is pure and never fails: at worst it
// echoes the input unchanged.
func ResolveMethod(methodField, callURL string) string {
	field := strings.TrimSpace(methodField)
	if field == "" {
		return methodField
	}

	if bareVerbRe.MatchString(field) {
		return strings.ToUpper(field)
	}

	if m := ternaryRe.FindStringSubmatch(field); m != nil {
		param, literal := m[1], m[2]
		verbA, verbB := strings.ToUpper(m[3]), strings.ToUpper(m[4])
		if callURL != "" {
			if value, present := queryParam(callURL, param); present {
				if value == literal {
					return verbA
				}
				return verbB
			}
			// The parameter is absent from the URL. For the common
			// create-vs-edit pattern (literal 'true'), a resource id in the
			// path suggests an edit. This is a documented guess with no
			// ground truth, not a guaranteed resolution.
			if literal == "true" && pathSegments(callURL) > 2 {
				return verbB
			}
		}
		return verbA
	}

	if m := anyVerbRe.FindString(field); m != "" {
		return strings.ToUpper(m)
	}

	return methodField
}

func queryParam(callURL, name string) (string, bool) {
	u, err := url.Parse(callURL)
	if err != nil {
		return "", false
	}
	values := u.Query()
	if _, ok := values[name]; !ok {
		return "", false
	}
	return values.Get(name), true
}

func pathSegments(callURL string) int {
	u, err := url.Parse(callURL)
	if err != nil {
		return 0
	}
	n := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}

// StripQuery returns the endpoint path without its query string, used when
// building comparable API identities.
func StripQuery(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
