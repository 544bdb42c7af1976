package distill

import (
	"sort"
	"time"

	"github.com/xkilldash9x/voyage-cli/internal/journey"
	"github.com/xkilldash9x/voyage-cli/internal/trace"
)

// A pointer click and the keydown of the modifier held during it are
// frequently logged under different correlation ids, so modifier state must
// be reconstructed from a timeline spanning the whole log. This is a
// deliberate exception to per-bucket processing.

type modifierEvent struct {
	ts   float64
	key  string
	down bool
}

// ModifierTimeline is a chronologically sorted list of modifier keydown and
// keyup observations. It is derived during distillation and not persisted.
type ModifierTimeline struct {
	events []modifierEvent
	window float64 // milliseconds
}

func isModifierKey(key string) bool {
	switch key {
	case "Control", "Meta", "Shift", "Alt":
		return true
	}
	return false
}

// BuildModifierTimeline extracts modifier keydown/keyup events from the
// full flat event stream. The window bounds how long a keydown with no
// observed keyup still counts as held: keyups can be evicted from the
// capture buffer, and without the bound a dropped keyup would pin the
// modifier for the rest of the journey.
func BuildModifierTimeline(events []trace.Event, window time.Duration) *ModifierTimeline {
	tl := &ModifierTimeline{window: float64(window.Milliseconds())}
	for i := range events {
		e := &events[i]
		if e.Kind != trace.KindInteraction || !isModifierKey(e.Detail.Key) {
			continue
		}
		switch e.InteractionName() {
		case "keydown":
			tl.events = append(tl.events, modifierEvent{ts: e.PerfTs, key: e.Detail.Key, down: true})
		case "keyup":
			tl.events = append(tl.events, modifierEvent{ts: e.PerfTs, key: e.Detail.Key, down: false})
		}
	}
	sort.SliceStable(tl.events, func(i, j int) bool { return tl.events[i].ts < tl.events[j].ts })
	return tl
}

// ActiveAt returns the modifiers considered held at time ts: the most
// recent preceding keydown has no intervening keyup and occurred within
// the recency window.
func (tl *ModifierTimeline) ActiveAt(ts float64) journey.Modifiers {
	lastDown := make(map[string]float64)
	for _, e := range tl.events {
		if e.ts > ts {
			break
		}
		if e.down {
			lastDown[e.key] = e.ts
		} else {
			delete(lastDown, e.key)
		}
	}

	var mods journey.Modifiers
	for key, down := range lastDown {
		if ts-down > tl.window {
			continue
		}
		switch key {
		case "Control":
			mods.Ctrl = true
		case "Shift":
			mods.Shift = true
		case "Meta":
			mods.Meta = true
		case "Alt":
			mods.Alt = true
		}
	}
	return mods
}
