package replay

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/voyage-cli/internal/config"
	"github.com/xkilldash9x/voyage-cli/internal/distill"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
	"go.uber.org/zap"
)

// Options parameterizes one script generation.
type Options struct {
	// Name labels the emitted test.
	Name string
	// BaseURL overrides the configured application root.
	BaseURL string
	// Recapture emits trace re-capture scaffolding so the replayed run can
	// export a fresh log for comparison.
	Recapture bool
}

// Generator emits an executable Playwright script for a distilled journey.
// Generation always succeeds: unresolvable locators become visible
// accessibility-gap comments in the output instead of errors.
type Generator struct {
	cfg        config.ReplayConfig
	log        *zap.Logger
	noiseRoles map[string]bool
}

// NewGenerator returns a generator configured with the replay settings.
func NewGenerator(cfg config.ReplayConfig, logger *zap.Logger) *Generator {
	noise := make(map[string]bool, len(cfg.NoiseRoles))
	for _, role := range cfg.NoiseRoles {
		noise[role] = true
	}
	return &Generator{cfg: cfg, log: logger.Named("replay"), noiseRoles: noise}
}

// scriptWriter accumulates indented script lines.
type scriptWriter struct {
	b      strings.Builder
	indent int
}

func (w *scriptWriter) line(format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", w.indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *scriptWriter) blank() { w.b.WriteByte('\n') }

// Generate renders the journey as a Playwright test. The step sequence is
// reordered first to undo form interleaving, and keystrokes are replaced by
// planned field fills.
func (g *Generator) Generate(j journey.Journey, opts Options) string {
	steps := ReorderFormSteps(j.Steps)
	plan := BuildFillPlan(steps, g.cfg)

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = g.cfg.BaseURL
	}
	name := opts.Name
	if name == "" {
		name = "recorded journey"
	}

	w := &scriptWriter{}
	w.line("import { test, expect } from '@playwright/test';")
	w.blank()
	if opts.Recapture {
		w.line("test(%s, async ({ page }, testInfo) => {", jsString(name))
	} else {
		w.line("test(%s, async ({ page }) => {", jsString(name))
	}
	w.indent++

	// filled suppresses repeat fills of a field within one form; it resets
	// at each submission.
	filled := make(map[string]bool)
	dialogSeq := 0
	prevMutating := false

	for i := range steps {
		step := &steps[i]
		if i > 0 {
			w.blank()
		}

		if prevMutating && step.Action != journey.ActionStartup {
			// The mutating call finishing does not mean the UI re-rendered.
			w.line("await page.waitForTimeout(%d);", g.cfg.SettleWait.Milliseconds())
			if loc, ok := g.resolveLocator(step.Target); ok {
				w.line("await %s.waitFor();", loc.expr)
			}
		}
		prevMutating = step.HasMutatingAwait()

		switch step.Action {
		case journey.ActionStartup:
			g.emitStartup(w, step, steps, baseURL)
		case journey.ActionClick, journey.ActionDoubleClick, journey.ActionContextMenu:
			g.emitPointer(w, step, i)
			dialogSeq = g.emitModals(w, step, dialogSeq)
			g.emitToasts(w, step)
			if step.IsSubmission() {
				filled = make(map[string]bool)
			}
		case journey.ActionKeyPress:
			g.emitKeyPress(w, step, i, plan, filled)
			g.emitToasts(w, step)
		case journey.ActionToast:
			g.emitToasts(w, step)
		}
	}

	if opts.Recapture {
		w.blank()
		w.line("// Export the fresh trace captured during this replay.")
		w.line("const capture = await page.evaluate(() => (window as any).__voyage?.exportTrace?.());")
		w.line("if (capture) {")
		w.indent++
		w.line("await testInfo.attach('voyage-trace', { body: JSON.stringify(capture), contentType: 'application/json' });")
		w.indent--
		w.line("}")
	}

	w.indent--
	w.line("});")
	return w.b.String()
}

// emitStartup navigates to the application root while waiting for the first
// recorded API call, as one joined race: navigation is not "done" before
// the initial load completes. If the journey's first interaction happened
// away from root, it then routes there by clicking the derived navigation
// label. The target application uses client-side routing, so a direct URL
// load would not reproduce the recorded state.
func (g *Generator) emitStartup(w *scriptWriter, step *journey.Step, steps []journey.Step, baseURL string) {
	apis := step.APIAwaits()
	if len(apis) > 0 {
		first := apis[0]
		w.line("await Promise.all([")
		w.indent++
		w.line("%s,", waitForResponseExpr(first))
		w.line("page.goto(%s),", jsString(baseURL))
		w.indent--
		w.line("]);")
	} else {
		w.line("await page.goto(%s);", jsString(baseURL))
		w.line("await page.waitForLoadState('networkidle');")
	}

	if start := startingPath(steps); start != "" {
		label := pathLabel(start)
		w.line("// The recording began at %s; reach it through the app's own navigation.", start)
		w.line("await page.getByRole('link', { name: %s }).click();", jsString(label))
		w.line("await page.waitForURL(%s);", jsString("**"+start))
	}
}

// startingPath finds where the first post-startup navigation started. A
// non-root origin means the recording began away from the application root.
func startingPath(steps []journey.Step) string {
	for i := 1; i < len(steps); i++ {
		if nav := steps[i].Navigation(); nav != nil {
			if nav.From != "" && nav.From != "/" {
				return nav.From
			}
			return ""
		}
	}
	return ""
}

func pathLabel(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	return segs[len(segs)-1]
}

// emitPointer renders a click, double-click or right-click, joined with the
// step's asynchronous waits.
func (g *Generator) emitPointer(w *scriptWriter, step *journey.Step, idx int) {
	loc, ok := g.resolveLocator(step.Target)
	if !ok {
		w.line("// ACCESSIBILITY GAP: step %d (%s) has no usable role, name, label or test id.", idx, step.Action)
		g.log.Warn("accessibility gap in generated script", zap.Int("step", idx))
		return
	}

	expr := loc.expr
	if isExpandToggle(step.Target) {
		// The click landed on the expand glyph, not the tree-item label.
		expr += ".locator('[class*=\"toggle\"]')"
	}
	if step.Target.Role == "checkbox" {
		// Selection checkboxes stay hidden until their row is hovered.
		w.line("await page.getByRole('row').filter({ has: %s }).hover();", loc.expr)
	}

	var callOpts []string
	if step.Action == journey.ActionContextMenu {
		callOpts = append(callOpts, "button: 'right'")
	}
	if mods := modifierList(step.Target.Modifiers); mods != "" {
		callOpts = append(callOpts, "modifiers: "+mods)
	}
	method := "click"
	if step.Action == journey.ActionDoubleClick {
		method = "dblclick"
	}
	action := fmt.Sprintf("%s.%s(%s)", expr, method, wrapOpts(callOpts))

	waits := g.waitExprs(step)
	if len(waits) == 0 {
		w.line("await %s;", action)
		return
	}
	w.line("await Promise.all([")
	w.indent++
	for _, wait := range waits {
		w.line("%s,", wait)
	}
	w.line("%s,", action)
	w.indent--
	w.line("]);")
}

// waitExprs renders one synchronization wait per asynchronous await.
func (g *Generator) waitExprs(step *journey.Step) []string {
	var waits []string
	for _, a := range step.Awaits {
		switch a.Kind {
		case journey.AwaitAPI:
			waits = append(waits, waitForResponseExpr(a))
		case journey.AwaitNavigation:
			waits = append(waits, fmt.Sprintf("page.waitForURL(%s)", jsString("**"+a.To)))
		}
	}
	return waits
}

func waitForResponseExpr(a journey.Await) string {
	cond := fmt.Sprintf("resp.url().includes(%s) && resp.request().method() === %s",
		jsString(distill.StripQuery(a.Endpoint)), jsString(a.Method))
	if a.Status > 0 {
		cond += fmt.Sprintf(" && resp.status() === %d", a.Status)
	}
	return fmt.Sprintf("page.waitForResponse((resp) => %s)", cond)
}

// emitKeyPress replaces text-field keystrokes with one planned fill per
// field per form; later keystrokes on an already-filled field are
// suppressed. Key presses outside text fields replay as raw key presses.
func (g *Generator) emitKeyPress(w *scriptWriter, step *journey.Step, idx int, plan *FillPlan, filled map[string]bool) {
	loc, ok := g.resolveLocator(step.Target)
	if !ok {
		w.line("// ACCESSIBILITY GAP: step %d (key-press) has no usable locator.", idx)
		return
	}

	if step.IsKeystroke() {
		name := step.FieldName()
		if filled[name] {
			return
		}
		if fv, planned := plan.Next(name); planned {
			filled[name] = true
			w.line("await %s.fill(%s);", loc.expr, jsString(fv.Value))
			return
		}
	}
	if step.Target.Key != "" {
		w.line("await %s.press(%s);", loc.expr, jsString(step.Target.Key))
	}
}

// emitModals renders dialog resolutions. Dialogs sharing a title but
// resolving differently within one step are handled with a runtime branch
// that probes for the expected confirm button instead of hardcoding an
// order. More than two distinct outcomes for one title is explicitly
// unsupported and surfaced as a comment.
func (g *Generator) emitModals(w *scriptWriter, step *journey.Step, seq int) int {
	for _, group := range groupModalsByTitle(step.Modals) {
		outcomes := distinctResolutions(group)
		switch {
		case len(outcomes) > 2:
			w.line("// UNSUPPORTED: %d distinct outcomes recorded for dialogs titled %s; resolve manually.",
				len(outcomes), jsString(group[0].Title))
		case len(outcomes) == 2 && len(group) > 1:
			seq++
			confirm := firstConfirm(group)
			w.line("// %d %s dialogs resolve differently at replay time; decide per dialog.", len(group), jsString(group[0].Title))
			w.line("for (let i = 0; i < %d; i++) {", len(group))
			w.indent++
			w.line("const dialog%d = page.getByRole('dialog', { name: %s });", seq, jsString(group[0].Title))
			w.line("await dialog%d.waitFor();", seq)
			w.line("const confirm%d = dialog%d.getByRole('button', { name: %s });", seq, seq, jsString(confirmButton(confirm)))
			w.line("if (await confirm%d.count()) {", seq)
			w.indent++
			w.line("await confirm%d.click();", seq)
			w.indent--
			w.line("} else {")
			w.indent++
			w.line("await page.keyboard.press('Escape');")
			w.indent--
			w.line("}")
			w.indent--
			w.line("}")
		default:
			for _, m := range group {
				seq = g.emitSingleModal(w, m, seq)
			}
		}
	}
	return seq
}

func (g *Generator) emitSingleModal(w *scriptWriter, m journey.Modal, seq int) int {
	switch m.Resolution {
	case journey.ResolutionConfirm:
		seq++
		w.line("const dialog%d = page.getByRole('dialog', { name: %s });", seq, jsString(m.Title))
		w.line("await dialog%d.getByRole('button', { name: %s }).click();", seq, jsString(confirmButton(&m)))
	case journey.ResolutionCancel:
		seq++
		w.line("const dialog%d = page.getByRole('dialog', { name: %s });", seq, jsString(m.Title))
		w.line("await dialog%d.waitFor();", seq)
		w.line("await page.keyboard.press('Escape');")
	default:
		w.line("// Dialog %s was shown with no recorded resolution; left for manual review.", jsString(m.Title))
	}
	return seq
}

func confirmButton(m *journey.Modal) string {
	if m != nil && m.Button != "" {
		return m.Button
	}
	return "OK"
}

func groupModalsByTitle(modals []journey.Modal) [][]journey.Modal {
	var groups [][]journey.Modal
	index := make(map[string]int)
	for _, m := range modals {
		if i, ok := index[m.Title]; ok {
			groups[i] = append(groups[i], m)
			continue
		}
		index[m.Title] = len(groups)
		groups = append(groups, []journey.Modal{m})
	}
	return groups
}

func distinctResolutions(group []journey.Modal) map[journey.Resolution]bool {
	out := make(map[journey.Resolution]bool)
	for _, m := range group {
		out[m.Resolution] = true
	}
	return out
}

func firstConfirm(group []journey.Modal) *journey.Modal {
	for i := range group {
		if group[i].Resolution == journey.ResolutionConfirm {
			return &group[i]
		}
	}
	return nil
}

// emitToasts asserts visibility of each recorded toast message.
func (g *Generator) emitToasts(w *scriptWriter, step *journey.Step) {
	for _, toast := range step.Toasts {
		w.line("await expect(page.getByText(%s)).toBeVisible();", jsString(toast.Message))
	}
}

func wrapOpts(opts []string) string {
	if len(opts) == 0 {
		return ""
	}
	return "{ " + strings.Join(opts, ", ") + " }"
}
