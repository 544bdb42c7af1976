package trace

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// ErrUnrecognizedFormat is returned when the input is neither a structured
// JSON log nor a grouped text export. This is a caller bug (wrong file
// supplied), not a data-quality issue, so it fails fast.
var ErrUnrecognizedFormat = errors.New("unrecognized trace format")

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// structuredLog is the wrapped form of the JSON shape. Bare arrays are also
// accepted.
type structuredLog struct {
	Events []Event `json:"events"`
}

// Normalize detects the source shape of a raw log and produces the uniform
// event list, sorted chronologically. It is a pure transform: the input is
// never mutated and repeated calls yield identical results.
func Normalize(raw []byte, logger *zap.Logger) ([]Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnrecognizedFormat)
	}

	switch trimmed[0] {
	case '[':
		var events []Event
		if err := jsonCodec.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("%w: input looks like a JSON array but does not parse: %v", ErrUnrecognizedFormat, err)
		}
		return finalize(events), nil
	case '{':
		var log structuredLog
		if err := jsonCodec.Unmarshal(trimmed, &log); err != nil {
			return nil, fmt.Errorf("%w: input looks like a JSON object but does not parse: %v", ErrUnrecognizedFormat, err)
		}
		if log.Events == nil {
			return nil, fmt.Errorf("%w: JSON object carries no \"events\" array", ErrUnrecognizedFormat)
		}
		return finalize(log.Events), nil
	}

	if bytes.Contains(trimmed, []byte(groupedHeaderMark)) {
		events, err := parseGroupedText(trimmed, logger)
		if err != nil {
			return nil, err
		}
		return finalize(events), nil
	}

	return nil, fmt.Errorf("%w: not a JSON log and no %q trace headers found", ErrUnrecognizedFormat, groupedHeaderMark)
}

// finalize orders events by timestamp. The sort is stable so events sharing
// a timestamp keep their source order.
func finalize(events []Event) []Event {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].PerfTs < events[j].PerfTs
	})
	return events
}
