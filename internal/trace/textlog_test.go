package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const groupedSample = `--- Trace 1: Startup (120.5ms) ---
  [api:complete] GET /api/files 200
  [component:init] FileBrowser

--- Trace 2: Rename foo.txt (80ms) ---
  @0 [interaction] click role=button name="Rename" tag=BUTTON mods=ctrl,shift
  @5 [handler:start] submit
      args: [{"name":"bar.txt"}]
  @40 [api:complete] PUT /files/foo.txt 200
  [toast] success "File renamed"

--- Trace 3: Delete dialog (30ms) ---
  @0 [interaction] click role=menuitem name="Delete"
  @2 [modal:show] "Delete file?"
      buttons: [{"label":"Delete","value":"ok"},{"label":"Cancel","value":"cancel"}]
  @20 [modal:confirm] value=ok
  @25 [navigate] /files -> /files/trash
`

func TestParseGroupedText(t *testing.T) {
	t.Parallel()

	events, err := Normalize([]byte(groupedSample), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, events, 10)

	startup := events[0]
	assert.Equal(t, StartupTracePrefix, startup.TraceID, "startup summary maps to the reserved id")
	assert.Equal(t, KindAPIComplete, startup.Kind)
	assert.Equal(t, "GET", startup.Method)
	assert.Equal(t, "/api/files", startup.Endpoint)
	assert.Equal(t, 200, startup.Status)

	assert.Equal(t, KindComponentInit, events[1].Kind)
	assert.Equal(t, "FileBrowser", events[1].Message)

	clickEv := events[2]
	assert.Equal(t, "trace-2", clickEv.TraceID)
	assert.Equal(t, "click", clickEv.InteractionName())
	assert.Equal(t, "button", clickEv.Detail.AriaRole)
	assert.Equal(t, "Rename", clickEv.Detail.AriaName)
	assert.Equal(t, "BUTTON", clickEv.Detail.TargetTag)
	assert.True(t, clickEv.Detail.CtrlKey)
	assert.True(t, clickEv.Detail.ShiftKey)
	assert.False(t, clickEv.Detail.MetaKey)

	handler := events[3]
	assert.Equal(t, KindHandlerStart, handler.Kind)
	assert.Equal(t, "submit", handler.EventName)
	assert.JSONEq(t, `[{"name":"bar.txt"}]`, string(handler.RawArgs()))

	put := events[4]
	assert.Equal(t, "PUT", put.Method)
	assert.Equal(t, "/files/foo.txt", put.Endpoint)

	toast := events[5]
	assert.Equal(t, KindToast, toast.Kind)
	assert.Equal(t, "success", toast.ToastType)
	assert.Equal(t, "File renamed", toast.Message)

	show := events[7]
	assert.Equal(t, "trace-3", show.TraceID)
	assert.Equal(t, KindModalShow, show.Kind)
	assert.Equal(t, "Delete file?", show.Title)
	require.Len(t, show.Buttons, 2)
	assert.Equal(t, "Delete", show.Buttons[0].Label)

	confirm := events[8]
	assert.Equal(t, KindModalConfirm, confirm.Kind)
	assert.Equal(t, "ok", confirm.Value)

	nav := events[9]
	assert.Equal(t, KindNavigate, nav.Kind)
	assert.Equal(t, "/files", nav.From)
	assert.Equal(t, "/files/trash", nav.To)
}

func TestParseGroupedTextTimestamps(t *testing.T) {
	t.Parallel()

	events, err := Normalize([]byte(groupedSample), zap.NewNop())
	require.NoError(t, err)

	// Explicit @ms markers offset from the block base.
	assert.Equal(t, 2e6, events[2].PerfTs)
	assert.Equal(t, 2e6+5, events[3].PerfTs)
	assert.Equal(t, 2e6+40, events[4].PerfTs)
	// The unmarked toast line gets a synthetic timestamp after the PUT.
	assert.Greater(t, events[5].PerfTs, events[4].PerfTs)
	assert.Less(t, events[5].PerfTs, 3e6, "synthetic timestamps stay within the block")
}

func TestParseGroupedTextTruncatedArgsKept(t *testing.T) {
	t.Parallel()

	sample := "--- Trace 4: Open item (10ms) ---\n" +
		"  @0 [handler:start] open\n" +
		"      args: [{\"displayName\":\"quarterly-rep\n"

	events, err := Normalize([]byte(sample), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "quarterly-rep", ExtractDisplayName(events[0].RawArgs()))
}

func TestParseGroupedTextRejectsEventBeforeHeader(t *testing.T) {
	t.Parallel()

	_, err := parseGroupedText([]byte("  [interaction] click\n--- Trace 1: x (1ms) ---\n"), zap.NewNop())
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
}

func TestParseGroupedTextSkipsMalformedEventLines(t *testing.T) {
	t.Parallel()

	sample := "--- Trace 1: mixed (5ms) ---\n" +
		"  @0 [navigate] no arrow here\n" +
		"  @1 [toast] info \"still parsed\"\n"

	events, err := Normalize([]byte(sample), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "still parsed", events[0].Message)
}
