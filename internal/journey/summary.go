package journey

import (
	"fmt"
	"sort"
	"strings"
)

// Digest is a compact human-readable summary of a journey, used for CLI
// listings.
type Digest struct {
	Steps       int      `json:"steps"`
	APIs        []string `json:"apis"`
	Forms       int      `json:"forms"`
	Navigations int      `json:"navigations"`
}

// Summarize produces a Digest for a journey. The API set covers completed
// calls from every step including startup, deduplicated as "METHOD /path".
func Summarize(j Journey) Digest {
	d := Digest{Steps: len(j.Steps)}
	apiSet := make(map[string]struct{})
	for i := range j.Steps {
		s := &j.Steps[i]
		if s.IsSubmission() {
			d.Forms++
		}
		for _, a := range s.Awaits {
			switch a.Kind {
			case AwaitAPI:
				apiSet[fmt.Sprintf("%s %s", a.Method, a.Endpoint)] = struct{}{}
			case AwaitNavigation:
				d.Navigations++
			}
		}
	}
	for k := range apiSet {
		d.APIs = append(d.APIs, k)
	}
	sort.Strings(d.APIs)
	return d
}

// String renders the digest on one line.
func (d Digest) String() string {
	return fmt.Sprintf("%d steps, %d apis, %d forms, %d navigations",
		d.Steps, len(d.APIs), d.Forms, d.Navigations)
}

// Describe renders a short multi-line digest including the API set.
func (d Digest) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "steps: %d\nforms: %d\nnavigations: %d\napis (%d):\n", d.Steps, d.Forms, d.Navigations, len(d.APIs))
	for _, api := range d.APIs {
		fmt.Fprintf(&b, "  %s\n", api)
	}
	return b.String()
}
