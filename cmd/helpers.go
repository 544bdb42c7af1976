package cmd

import (
	"fmt"
	"os"

	"github.com/xkilldash9x/voyage-cli/internal/distill"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
	"github.com/xkilldash9x/voyage-cli/internal/observability"
	"github.com/xkilldash9x/voyage-cli/internal/store"
	"github.com/xkilldash9x/voyage-cli/internal/trace"
)

// distillFile reads a raw trace log and runs the full distillation
// pipeline on it.
func distillFile(path string) (journey.Journey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return journey.Journey{}, fmt.Errorf("reading trace log %s: %w", path, err)
	}
	logger := observability.GetLogger()
	events, err := trace.Normalize(raw, logger)
	if err != nil {
		return journey.Journey{}, fmt.Errorf("normalizing %s: %w", path, err)
	}
	d := distill.NewDistiller(cfg.Distill, logger)
	return d.Distill(events), nil
}

func openStore() (*store.Store, error) {
	return store.New(cfg.Store.Dir, observability.GetLogger())
}

// resolveJourney loads a journey from either a stored name or a raw trace
// file on disk. Files win when both exist.
func resolveJourney(ref string) (journey.Journey, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return distillFile(ref)
	}
	s, err := openStore()
	if err != nil {
		return journey.Journey{}, err
	}
	entry, err := s.Load(ref)
	if err != nil {
		return journey.Journey{}, err
	}
	return entry.Journey(), nil
}
