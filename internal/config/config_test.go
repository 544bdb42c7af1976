package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.Distill.ModifierWindow)
	assert.Equal(t, 50, cfg.Distill.MaxLabelChars)
	assert.NotEmpty(t, cfg.Distill.LabelDenylist)
	assert.Equal(t, 250*time.Millisecond, cfg.Replay.SettleWait)
	assert.Contains(t, cfg.Replay.NoiseRoles, "generic")
	assert.Equal(t, ".voyage", cfg.Store.Dir)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.NoError(t, cfg.Validate())
}

func TestNewFromViperOverrides(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)
	v.Set("distill.modifier_window", "750ms")
	v.Set("store.dir", "/tmp/journeys")
	v.Set("compare.ignore_apis", []string{"/telemetry/"})

	cfg, err := NewFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Distill.ModifierWindow)
	assert.Equal(t, "/tmp/journeys", cfg.Store.Dir)
	assert.Equal(t, []string{"/telemetry/"}, cfg.Compare.IgnoreAPIs)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive modifier window", func(c *Config) { c.Distill.ModifierWindow = 0 }},
		{"non-positive label cap", func(c *Config) { c.Distill.MaxLabelChars = -1 }},
		{"exact score not above substring", func(c *Config) { c.Replay.ScoreExact = c.Replay.ScoreSubstring }},
		{"substring score not above word base", func(c *Config) { c.Replay.ScoreSubstring = c.Replay.ScoreWordBase }},
		{"empty store dir", func(c *Config) { c.Store.Dir = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
