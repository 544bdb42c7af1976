package distill

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xkilldash9x/voyage-cli/internal/config"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
	"github.com/xkilldash9x/voyage-cli/internal/trace"
	"go.uber.org/zap"
)

// Distiller groups a flat event stream into ordered Steps. It holds no
// state across invocations: distilling the same log twice yields identical
// step sequences.
type Distiller struct {
	cfg      config.DistillConfig
	log      *zap.Logger
	denylist []*regexp.Regexp
}

// NewDistiller compiles the label denylist and returns a ready distiller.
// Invalid denylist patterns are logged and skipped rather than failing
// construction.
func NewDistiller(cfg config.DistillConfig, logger *zap.Logger) *Distiller {
	d := &Distiller{cfg: cfg, log: logger.Named("distill")}
	for _, pattern := range cfg.LabelDenylist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			d.log.Warn("invalid label denylist pattern skipped",
				zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		d.denylist = append(d.denylist, re)
	}
	return d
}

// bucket is one correlation group of events.
type bucket struct {
	id     string
	events []trace.Event
	minTs  float64
}

// Distill produces the journey for a normalized event stream.
func (d *Distiller) Distill(events []trace.Event) journey.Journey {
	sorted := make([]trace.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PerfTs < sorted[j].PerfTs })

	buckets := partition(sorted)
	timeline := BuildModifierTimeline(sorted, d.cfg.ModifierWindow)
	tracker := NewSnapshotTracker(d.cfg.MaxSnapshotLabelChars)

	var steps []journey.Step

	// Exactly one startup step, always first.
	startup := findStartup(buckets)
	if startup != nil {
		steps = append(steps, d.startupStep(startup, tracker))
	} else {
		steps = append(steps, journey.Step{Action: journey.ActionStartup})
	}

	for _, b := range buckets {
		if b == startup {
			continue
		}
		if b.id == "" {
			// Events with no correlation id are background noise, kept only
			// for their toasts.
			steps = append(steps, d.toastOnlySteps(b)...)
			tracker.Observe(b.events, false)
			continue
		}
		step, ok := d.bucketStep(b, timeline, tracker)
		if !ok {
			continue
		}
		steps = append(steps, step)
	}

	return journey.Journey{Steps: collapseDoubleClicks(steps)}
}

// partition groups events by correlation id, ordering buckets by the
// minimum timestamp of their members.
func partition(events []trace.Event) []*bucket {
	byID := make(map[string]*bucket)
	var order []*bucket
	for i := range events {
		e := events[i]
		id := e.TraceID
		b, ok := byID[id]
		if !ok {
			b = &bucket{id: id, minTs: e.PerfTs}
			byID[id] = b
			order = append(order, b)
		}
		b.events = append(b.events, e)
		if e.PerfTs < b.minTs {
			b.minTs = e.PerfTs
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].minTs < order[j].minTs })
	return order
}

// findStartup locates the initial-load bucket: the reserved id prefix wins,
// otherwise the chronologically first correlated bucket qualifies if it
// contains no interaction event.
func findStartup(buckets []*bucket) *bucket {
	for _, b := range buckets {
		if strings.HasPrefix(b.id, trace.StartupTracePrefix) {
			return b
		}
	}
	for _, b := range buckets {
		if b.id == "" {
			continue
		}
		if !hasInteraction(b) {
			return b
		}
		return nil
	}
	return nil
}

func hasInteraction(b *bucket) bool {
	for i := range b.events {
		if b.events[i].IsInteraction() {
			return true
		}
	}
	return false
}

// startupStep collects the initial load's completed API calls, deduplicated
// by method and endpoint, plus any state-initialization markers.
func (d *Distiller) startupStep(b *bucket, tracker *SnapshotTracker) journey.Step {
	step := journey.Step{Action: journey.ActionStartup}
	seen := make(map[string]struct{})
	for i := range b.events {
		e := &b.events[i]
		switch e.Kind {
		case trace.KindAPIComplete:
			method := ResolveMethod(e.Method, e.APIPath())
			key := method + " " + e.APIPath()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			step.Awaits = append(step.Awaits, journey.Await{
				Kind: journey.AwaitAPI, Method: method, Endpoint: e.APIPath(), Status: e.Status,
			})
		case trace.KindComponentInit:
			step.Awaits = append(step.Awaits, journey.Await{Kind: journey.AwaitState, Path: e.Message})
		}
	}
	// Seed the snapshot baselines; startup never carries diffs.
	tracker.Observe(b.events, false)
	return step
}

// toastOnlySteps emits one standalone toast step per toast event of an
// uncorrelated bucket; everything else in it is dropped.
func (d *Distiller) toastOnlySteps(b *bucket) []journey.Step {
	var steps []journey.Step
	for i := range b.events {
		e := &b.events[i]
		if e.Kind != trace.KindToast {
			continue
		}
		steps = append(steps, journey.Step{
			Action: journey.ActionToast,
			Toasts: []journey.Toast{{Type: e.ToastType, Message: e.Message}},
		})
	}
	return steps
}

// bucketStep distills one correlated bucket into a step. Buckets without a
// primary interaction represent pure background activity and are skipped,
// unless they contain only toasts.
func (d *Distiller) bucketStep(b *bucket, timeline *ModifierTimeline, tracker *SnapshotTracker) (journey.Step, bool) {
	primary := primaryInteraction(b)
	if primary == nil {
		if toastsOnly(b) {
			toasts := collectToasts(b)
			tracker.Observe(b.events, false)
			return journey.Step{Action: journey.ActionToast, Toasts: toasts}, true
		}
		d.log.Debug("skipping background bucket", zap.String("traceId", b.id),
			zap.Int("events", len(b.events)))
		tracker.Observe(b.events, false)
		return journey.Step{}, false
	}

	step := journey.Step{Action: actionFor(primary)}
	step.Target = d.buildTarget(primary, b)
	d.attachFormData(step.Target, primary, b)
	d.attachAwaits(&step, b)
	step.Modals = resolveModals(b)
	step.Toasts = collectToasts(b)

	// Explicit modifier flags on the interaction always win; only fall back
	// to the global timeline for pointer steps that carry none.
	if (step.Action == journey.ActionClick || step.Action == journey.ActionDoubleClick) &&
		!step.Target.Modifiers.Any() {
		step.Target.Modifiers = timeline.ActiveAt(primary.PerfTs)
	}

	step.DataSourceChanges = tracker.Observe(b.events, step.HasMutatingAwait())
	return step, true
}

// primaryInteraction finds the user-input event a bucket revolves around.
// Modifier-key keydowns are not primary: they are evidence for the modifier
// timeline, not actions in their own right.
func primaryInteraction(b *bucket) *trace.Event {
	for i := range b.events {
		e := &b.events[i]
		if !e.IsInteraction() {
			continue
		}
		if e.InteractionName() == "keydown" && isModifierKey(e.Detail.Key) {
			continue
		}
		return e
	}
	return nil
}

func toastsOnly(b *bucket) bool {
	sawToast := false
	for i := range b.events {
		switch b.events[i].Kind {
		case trace.KindToast:
			sawToast = true
		case trace.KindStateChanges:
			// Snapshot churn rides along with toasts; tolerated.
		default:
			return false
		}
	}
	return sawToast
}

func collectToasts(b *bucket) []journey.Toast {
	var toasts []journey.Toast
	for i := range b.events {
		e := &b.events[i]
		if e.Kind == trace.KindToast {
			toasts = append(toasts, journey.Toast{Type: e.ToastType, Message: e.Message})
		}
	}
	return toasts
}

func actionFor(e *trace.Event) journey.Action {
	switch e.InteractionName() {
	case "dblclick":
		return journey.ActionDoubleClick
	case "contextmenu":
		return journey.ActionContextMenu
	case "keydown":
		return journey.ActionKeyPress
	default:
		return journey.ActionClick
	}
}

// buildTarget merges the available target descriptions in priority order:
// explicit aria role/name, stable test id, a semantic label from the
// nearest handler's arguments, and finally the interaction's own text if
// it is short and not a generic component or tag name.
func (d *Distiller) buildTarget(primary *trace.Event, b *bucket) *journey.Target {
	t := &journey.Target{
		Role:   primary.Detail.AriaRole,
		Name:   primary.Detail.AriaName,
		Tag:    primary.Detail.TargetTag,
		TestID: primary.UID,
		Key:    primary.Detail.Key,
		Modifiers: journey.Modifiers{
			Ctrl:  primary.Detail.CtrlKey,
			Shift: primary.Detail.ShiftKey,
			Meta:  primary.Detail.MetaKey,
			Alt:   primary.Detail.AltKey,
		},
	}
	if primary.InteractionName() != "keydown" {
		t.Key = ""
	}

	if label := d.handlerLabel(b, primary.PerfTs); label != "" {
		t.Label = label
	} else if text := primary.Detail.Text; text != "" && len(text) < d.cfg.MaxLabelChars && !d.denied(text) {
		t.Label = text
	}
	return t
}

// handlerLabel pulls a display name from the nearest handler-start event at
// or after the interaction.
func (d *Distiller) handlerLabel(b *bucket, after float64) string {
	for i := range b.events {
		e := &b.events[i]
		if e.Kind != trace.KindHandlerStart || e.PerfTs < after {
			continue
		}
		if name := trace.ExtractDisplayName(e.RawArgs()); name != "" {
			return name
		}
	}
	return ""
}

func (d *Distiller) denied(text string) bool {
	for _, re := range d.denylist {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// attachFormData marks submission-shaped interactions: a click whose
// nearest handler-start is a submit carrying field values, or failing that
// a mutating API call in the bucket with a structured request body.
func (d *Distiller) attachFormData(t *journey.Target, primary *trace.Event, b *bucket) {
	if primary.InteractionName() != "click" {
		return
	}
	for i := range b.events {
		e := &b.events[i]
		if e.Kind == trace.KindHandlerStart && e.EventName == "submit" {
			if data := trace.ExtractFormData(e.RawArgs()); data != nil {
				t.FormData = data
				return
			}
		}
	}
	for i := range b.events {
		e := &b.events[i]
		if e.Kind != trace.KindAPIStart && e.Kind != trace.KindAPIComplete {
			continue
		}
		method := ResolveMethod(e.Method, e.APIPath())
		if journey.IsMutating(method) && len(e.Body) > 0 {
			t.FormData = e.Body
			return
		}
	}
}

// attachAwaits builds the step's asynchronous expectations: its API calls
// (completions override starts, errors are flagged) and its navigation.
// State-change descriptors are consumed by the snapshot tracker instead of
// being retained verbatim.
func (d *Distiller) attachAwaits(step *journey.Step, b *bucket) {
	type apiState struct {
		await journey.Await
		rank  int // start < error < complete
	}
	byCall := make(map[string]*apiState)
	var order []string

	note := func(e *trace.Event, rank int, status int, failed bool) {
		method := ResolveMethod(e.Method, e.APIPath())
		key := method + " " + e.APIPath()
		st, ok := byCall[key]
		if !ok {
			st = &apiState{}
			byCall[key] = st
			order = append(order, key)
		}
		if rank < st.rank {
			return
		}
		st.rank = rank
		st.await = journey.Await{
			Kind: journey.AwaitAPI, Method: method, Endpoint: e.APIPath(),
			Status: status, Failed: failed,
		}
	}

	for i := range b.events {
		e := &b.events[i]
		switch e.Kind {
		case trace.KindAPIStart:
			note(e, 0, 0, false)
		case trace.KindAPIError:
			note(e, 1, e.Status, true)
		case trace.KindAPIComplete:
			note(e, 2, e.Status, false)
		case trace.KindNavigate:
			step.Awaits = append(step.Awaits, journey.Await{
				Kind: journey.AwaitNavigation, From: e.From, To: e.To,
			})
		}
	}
	for _, key := range order {
		step.Awaits = append(step.Awaits, byCall[key].await)
	}
}

// resolveModals pairs each modal-show with the nearest subsequent
// resolution occurring before the next show. A trace may contain several
// independent dialog sequences back-to-back; a show with no resolution is
// recorded as unknown rather than guessed.
func resolveModals(b *bucket) []journey.Modal {
	var modals []journey.Modal
	var pending *trace.Event
	flush := func(res journey.Resolution, button string) {
		if pending == nil {
			return
		}
		modals = append(modals, journey.Modal{Title: pending.Title, Resolution: res, Button: button})
		pending = nil
	}
	for i := range b.events {
		e := &b.events[i]
		switch e.Kind {
		case trace.KindModalShow:
			flush(journey.ResolutionUnknown, "")
			pending = e
		case trace.KindModalConfirm:
			button := e.ButtonLabel
			if button == "" && pending != nil {
				for _, btn := range pending.Buttons {
					if btn.Value == e.Value {
						button = btn.Label
						break
					}
				}
			}
			flush(journey.ResolutionConfirm, button)
		case trace.KindModalCancel:
			flush(journey.ResolutionCancel, "")
		}
	}
	flush(journey.ResolutionUnknown, "")
	return modals
}

// collapseDoubleClicks removes the synthetic click pair the browser fires
// before a dblclick: a click,click,double-click run on the same target
// keeps only the double-click.
func collapseDoubleClicks(steps []journey.Step) []journey.Step {
	var out []journey.Step
	for _, step := range steps {
		if step.Action == journey.ActionDoubleClick {
			for len(out) > 0 {
				last := &out[len(out)-1]
				if last.Action == journey.ActionClick && journey.SameTarget(last.Target, step.Target) {
					out = out[:len(out)-1]
					continue
				}
				break
			}
		}
		out = append(out, step)
	}
	return out
}
