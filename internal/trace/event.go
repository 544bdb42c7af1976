// Package trace ingests raw browser-interaction trace logs. Two source
// shapes are supported: a flat chronological JSON array of tagged events,
// and a human-readable grouped text export. Both converge to the same
// Event representation.
package trace

import "encoding/json"

// Kind tags the category of a raw event.
type Kind string

const (
	KindInteraction     Kind = "interaction"
	KindNavigate        Kind = "navigate"
	KindAPIStart        Kind = "api:start"
	KindAPIComplete     Kind = "api:complete"
	KindAPIError        Kind = "api:error"
	KindHandlerStart    Kind = "handler:start"
	KindHandlerComplete Kind = "handler:complete"
	KindHandlerError    Kind = "handler:error"
	KindModalShow       Kind = "modal:show"
	KindModalConfirm    Kind = "modal:confirm"
	KindModalCancel     Kind = "modal:cancel"
	KindToast           Kind = "toast"
	KindStateChanges    Kind = "state:changes"
	KindComponentInit   Kind = "component:init"
)

// StartupTracePrefix marks the reserved correlation id used by the
// application's initial-load trace group.
const StartupTracePrefix = "startup"

// Detail carries the interaction-specific payload of an interaction event.
type Detail struct {
	Text      string `json:"text,omitempty"`
	AriaRole  string `json:"ariaRole,omitempty"`
	AriaName  string `json:"ariaName,omitempty"`
	TargetTag string `json:"targetTag,omitempty"`
	CtrlKey   bool   `json:"ctrlKey,omitempty"`
	ShiftKey  bool   `json:"shiftKey,omitempty"`
	MetaKey   bool   `json:"metaKey,omitempty"`
	AltKey    bool   `json:"altKey,omitempty"`
	Key       string `json:"key,omitempty"`
}

// StateDiff is one entry of a state-change event. Paths prefixed
// "DataSource:" carry collection snapshots in After.
type StateDiff struct {
	Path   string `json:"path"`
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// ModalButton is one enumerated button of a confirmation dialog.
type ModalButton struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Event is the uniform in-memory representation of one raw log entry.
// Only the fields relevant to the event's Kind are populated; the rest are
// zero. Events are read-only once produced.
type Event struct {
	Kind    Kind    `json:"kind"`
	TraceID string  `json:"traceId,omitempty"`
	PerfTs  float64 `json:"perfTs,omitempty"`

	// Interaction fields. The source logs the interaction name under either
	// "interaction" or "eventName" depending on capture version; handler
	// events always use "eventName".
	Interaction string `json:"interaction,omitempty"`
	EventName   string `json:"eventName,omitempty"`
	Detail      Detail `json:"detail,omitzero"`
	UID         string `json:"uid,omitempty"`

	// Navigation fields.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	// API fields.
	Method   string         `json:"method,omitempty"`
	URL      string         `json:"url,omitempty"`
	Endpoint string         `json:"endpoint,omitempty"`
	Status   int            `json:"status,omitempty"`
	Body     map[string]any `json:"body,omitempty"`

	// Handler fields. Args is kept raw: payloads are frequently truncated by
	// the capture buffer, so field extraction is best-effort (see Extract).
	Args json.RawMessage `json:"args,omitempty"`
	// EventArgs is an alternate key used by older capture versions.
	EventArgs json.RawMessage `json:"eventArgs,omitempty"`

	// Modal fields.
	Title       string        `json:"title,omitempty"`
	Buttons     []ModalButton `json:"buttons,omitempty"`
	Value       string        `json:"value,omitempty"`
	ButtonLabel string        `json:"buttonLabel,omitempty"`

	// Toast fields.
	ToastType string `json:"toastType,omitempty"`
	Message   string `json:"message,omitempty"`

	// State-change fields.
	DiffJSON []StateDiff `json:"diffJson,omitempty"`
}

// InteractionName returns the interaction verb (click, dblclick, keydown,
// keyup, contextmenu) regardless of which key the capture used.
func (e *Event) InteractionName() string {
	if e.Interaction != "" {
		return e.Interaction
	}
	return e.EventName
}

// APIPath returns the call's endpoint, preferring the explicit endpoint
// field over the full URL.
func (e *Event) APIPath() string {
	if e.Endpoint != "" {
		return e.Endpoint
	}
	return e.URL
}

// RawArgs returns the handler argument payload under whichever key the
// capture emitted it.
func (e *Event) RawArgs() []byte {
	if len(e.Args) > 0 {
		return e.Args
	}
	return e.EventArgs
}

// IsInteraction reports whether the event is a user-input interaction of
// one of the recognized verbs.
func (e *Event) IsInteraction() bool {
	if e.Kind != KindInteraction {
		return false
	}
	switch e.InteractionName() {
	case "click", "dblclick", "contextmenu", "keydown":
		return true
	}
	return false
}
