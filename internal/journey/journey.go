// Package journey defines the distilled representation of a recorded user
// task: an ordered sequence of Steps, each describing one user-observable
// action plus the asynchronous effects it is expected to trigger.
package journey

// Action identifies what kind of user-observable action a Step represents.
type Action string

const (
	ActionStartup     Action = "startup"
	ActionClick       Action = "click"
	ActionDoubleClick Action = "double-click"
	ActionContextMenu Action = "context-menu"
	ActionKeyPress    Action = "key-press"
	ActionToast       Action = "toast"
)

// Modifiers records which modifier keys were held during a pointer action.
type Modifiers struct {
	Ctrl  bool `json:"ctrl,omitempty"`
	Shift bool `json:"shift,omitempty"`
	Meta  bool `json:"meta,omitempty"`
	Alt   bool `json:"alt,omitempty"`
}

// Any reports whether at least one modifier is set.
func (m Modifiers) Any() bool {
	return m.Ctrl || m.Shift || m.Meta || m.Alt
}

// Target describes the element a Step acted on. Fields are populated
// best-effort from several sources in the raw log; locator generation picks
// among them in priority order.
type Target struct {
	Role   string `json:"role,omitempty"`
	Name   string `json:"name,omitempty"`
	Label  string `json:"label,omitempty"`
	Tag    string `json:"tag,omitempty"`
	TestID string `json:"testId,omitempty"`
	// Key holds the typed key for key-press steps.
	Key       string         `json:"key,omitempty"`
	Modifiers Modifiers      `json:"modifiers,omitzero"`
	FormData  map[string]any `json:"formData,omitempty"`
}

// AwaitKind tags the flavor of an asynchronous completion.
type AwaitKind string

const (
	AwaitAPI        AwaitKind = "api"
	AwaitNavigation AwaitKind = "navigation"
	AwaitState      AwaitKind = "state"
)

// Await is one asynchronous effect a Step is expected to complete: an API
// call, a navigation transition, or a state-initialization marker.
type Await struct {
	Kind AwaitKind `json:"kind"`

	// API fields.
	Method   string `json:"method,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	Status   int    `json:"status,omitempty"`
	Failed   bool   `json:"failed,omitempty"`

	// Navigation fields.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// State fields.
	Path string `json:"path,omitempty"`
}

// Resolution describes how a confirmation dialog ended.
type Resolution string

const (
	ResolutionConfirm Resolution = "confirm"
	ResolutionCancel  Resolution = "cancel"
	// ResolutionUnknown marks a modal-show with no observed outcome. Treated
	// as a data-quality signal, never fabricated into a confirm or cancel.
	ResolutionUnknown Resolution = "unknown"
)

// Modal records one confirmation-dialog sequence triggered by a Step.
type Modal struct {
	Title      string     `json:"title"`
	Resolution Resolution `json:"resolution"`
	Button     string     `json:"button,omitempty"`
}

// Toast records a notification shown during a Step.
type Toast struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// DataSourceChange lists items that appeared or disappeared from a named
// collection across a mutating Step.
type DataSourceChange struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Step is the distilled unit of a journey: one user-observable action plus
// the asynchronous conditions it triggers.
type Step struct {
	Action Action  `json:"action"`
	Target *Target `json:"target,omitempty"`
	Awaits []Await `json:"awaits,omitempty"`
	Modals []Modal `json:"modals,omitempty"`
	Toasts []Toast `json:"toasts,omitempty"`

	DataSourceChanges map[string]DataSourceChange `json:"dataSourceChanges,omitempty"`
}

// Journey is an ordered Step sequence representing one coherent user task.
// Exactly one startup step exists and it is always first.
type Journey struct {
	Steps []Step `json:"steps"`
}

// IsSubmission reports whether the step is a form submission: a click
// carrying captured form data.
func (s *Step) IsSubmission() bool {
	return s.Action == ActionClick && s.Target != nil && len(s.Target.FormData) > 0
}

// IsKeystroke reports whether the step is a keystroke into a text field.
func (s *Step) IsKeystroke() bool {
	if s.Action != ActionKeyPress || s.Target == nil {
		return false
	}
	switch s.Target.Role {
	case "textbox", "searchbox", "combobox":
		return true
	}
	switch s.Target.Tag {
	case "INPUT", "TEXTAREA":
		return true
	}
	return false
}

// FieldName returns the identifier used to correlate keystroke steps with
// form fields: the accessible name when present, else the raw label.
func (s *Step) FieldName() string {
	if s.Target == nil {
		return ""
	}
	if s.Target.Name != "" {
		return s.Target.Name
	}
	return s.Target.Label
}

// APIAwaits returns the step's API awaits.
func (s *Step) APIAwaits() []Await {
	var out []Await
	for _, a := range s.Awaits {
		if a.Kind == AwaitAPI {
			out = append(out, a)
		}
	}
	return out
}

// Navigation returns the step's navigation await, if any.
func (s *Step) Navigation() *Await {
	for i := range s.Awaits {
		if s.Awaits[i].Kind == AwaitNavigation {
			return &s.Awaits[i]
		}
	}
	return nil
}

// HasMutatingAwait reports whether any API await uses a non-GET verb.
func (s *Step) HasMutatingAwait() bool {
	for _, a := range s.Awaits {
		if a.Kind == AwaitAPI && IsMutating(a.Method) {
			return true
		}
	}
	return false
}

// IsMutating reports whether an HTTP verb implies a server-side mutation.
func IsMutating(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS", "":
		return false
	}
	return true
}

// SameTarget compares two targets by their identifying fields, ignoring
// form data and modifiers. Used for double-click collapsing.
func SameTarget(a, b *Target) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Role == b.Role && a.Name == b.Name && a.Label == b.Label &&
		a.Tag == b.Tag && a.TestID == b.TestID
}
