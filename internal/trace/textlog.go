package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// groupedHeaderMark opens every trace block header in the text export.
const groupedHeaderMark = "--- Trace"

var (
	headerRe = regexp.MustCompile(`^--- Trace (\d+): (.*?) \((\d+(?:\.\d+)?)ms\) ---$`)
	eventRe  = regexp.MustCompile(`^\s+(?:@(\d+(?:\.\d+)?)\s+)?\[([a-z:]+)\]\s*(.*)$`)
	kvRe     = regexp.MustCompile(`(\w+)=("(?:[^"\\]|\\.)*"|\S+)`)
)

// syntheticStride spaces out synthetic timestamps for lines that carry no
// explicit @ms marker, keeping in-block ordering intact.
const syntheticStride = 10.0

// parseGroupedText parses the human-readable grouped export: trace blocks
// headed by "--- Trace N: <summary> (<durationMs>ms) ---" containing
// indented "[kind] <details>" event lines, with further-indented
// continuation lines carrying argument or diff payloads.
func parseGroupedText(raw []byte, logger *zap.Logger) ([]Event, error) {
	var events []Event
	var current *Event
	traceID := ""
	blockBase := 0.0
	nextTs := 0.0
	sawHeader := false

	flush := func() {
		if current != nil {
			events = append(events, *current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			sawHeader = true
			n, _ := strconv.Atoi(m[1])
			summary := m[2]
			if strings.HasPrefix(strings.ToLower(summary), StartupTracePrefix) {
				traceID = StartupTracePrefix
			} else {
				traceID = fmt.Sprintf("trace-%d", n)
			}
			blockBase = float64(n) * 1e6
			nextTs = blockBase
			continue
		}

		if m := eventRe.FindStringSubmatch(line); m != nil && strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "      ") {
			if !sawHeader {
				return nil, fmt.Errorf("%w: event line %d before any trace header", ErrUnrecognizedFormat, lineNo)
			}
			flush()
			ts := nextTs
			if m[1] != "" {
				parsed, _ := strconv.ParseFloat(m[1], 64)
				ts = blockBase + parsed
			}
			nextTs = ts + syntheticStride
			ev, err := parseEventLine(Kind(m[2]), m[3])
			if err != nil {
				logger.Warn("skipping unparseable event line",
					zap.Int("line", lineNo), zap.Error(err))
				continue
			}
			ev.TraceID = traceID
			ev.PerfTs = ts
			current = ev
			continue
		}

		// Continuation line belonging to the previous event.
		if current != nil && strings.HasPrefix(line, "      ") {
			applyContinuation(current, strings.TrimSpace(line), logger)
			continue
		}

		if !sawHeader {
			return nil, fmt.Errorf("%w: unexpected content at line %d", ErrUnrecognizedFormat, lineNo)
		}
		logger.Debug("ignoring unrecognized line in grouped export", zap.Int("line", lineNo))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading grouped export: %w", err)
	}
	flush()
	return events, nil
}

// parseEventLine interprets the details portion of one "[kind] ..." line.
func parseEventLine(kind Kind, rest string) (*Event, error) {
	ev := &Event{Kind: kind}
	rest = strings.TrimSpace(rest)

	switch kind {
	case KindInteraction:
		fields := strings.SplitN(rest, " ", 2)
		ev.Interaction = fields[0]
		if len(fields) > 1 {
			applyInteractionPairs(ev, fields[1])
		}
	case KindNavigate:
		from, to, ok := strings.Cut(rest, "->")
		if !ok {
			return nil, fmt.Errorf("navigate line missing \"->\": %q", rest)
		}
		ev.From = strings.TrimSpace(from)
		ev.To = strings.TrimSpace(to)
	case KindAPIStart, KindAPIComplete, KindAPIError:
		parts := strings.Fields(rest)
		if len(parts) < 2 {
			return nil, fmt.Errorf("api line needs method and endpoint: %q", rest)
		}
		ev.Method = parts[0]
		ev.Endpoint = parts[1]
		if len(parts) > 2 {
			ev.Status, _ = strconv.Atoi(parts[2])
		}
	case KindHandlerStart, KindHandlerComplete, KindHandlerError:
		if fields := strings.Fields(rest); len(fields) > 0 {
			ev.EventName = fields[0]
		}
	case KindModalShow:
		ev.Title = unquote(rest)
	case KindModalConfirm:
		for _, m := range kvRe.FindAllStringSubmatch(rest, -1) {
			switch m[1] {
			case "value":
				ev.Value = unquote(m[2])
			case "label":
				ev.ButtonLabel = unquote(m[2])
			}
		}
	case KindModalCancel:
		// Timing only.
	case KindToast:
		typ, msg, ok := strings.Cut(rest, " ")
		if !ok {
			msg = rest
			typ = ""
		}
		ev.ToastType = typ
		ev.Message = unquote(strings.TrimSpace(msg))
	case KindStateChanges, KindComponentInit:
		ev.Message = rest
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	return ev, nil
}

func applyInteractionPairs(ev *Event, rest string) {
	for _, m := range kvRe.FindAllStringSubmatch(rest, -1) {
		val := unquote(m[2])
		switch m[1] {
		case "role":
			ev.Detail.AriaRole = val
		case "name":
			ev.Detail.AriaName = val
		case "tag":
			ev.Detail.TargetTag = val
		case "uid":
			ev.UID = val
		case "key":
			ev.Detail.Key = val
		case "text":
			ev.Detail.Text = val
		case "mods":
			for _, mod := range strings.Split(val, ",") {
				switch strings.ToLower(strings.TrimSpace(mod)) {
				case "ctrl", "control":
					ev.Detail.CtrlKey = true
				case "shift":
					ev.Detail.ShiftKey = true
				case "meta", "cmd":
					ev.Detail.MetaKey = true
				case "alt":
					ev.Detail.AltKey = true
				}
			}
		}
	}
}

// applyContinuation folds an indented payload line into its event. Payloads
// are JSON blobs that may be truncated; parse failures degrade to keeping
// the raw bytes for best-effort extraction later.
func applyContinuation(ev *Event, line string, logger *zap.Logger) {
	key, payload, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	payload = strings.TrimSpace(payload)
	switch strings.TrimSpace(key) {
	case "args":
		ev.Args = []byte(payload)
	case "body":
		var body map[string]any
		if err := jsonCodec.Unmarshal([]byte(payload), &body); err != nil {
			logger.Debug("truncated body payload kept as-is", zap.Error(err))
			return
		}
		ev.Body = body
	case "buttons":
		var buttons []ModalButton
		if err := jsonCodec.Unmarshal([]byte(payload), &buttons); err != nil {
			logger.Debug("unparseable buttons payload dropped", zap.Error(err))
			return
		}
		ev.Buttons = buttons
	case "diff":
		var diff []StateDiff
		if err := jsonCodec.Unmarshal([]byte(payload), &diff); err != nil {
			logger.Debug("unparseable diff payload dropped", zap.Error(err))
			return
		}
		ev.DiffJSON = diff
	}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
