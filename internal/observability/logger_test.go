package observability

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/voyage-cli/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer is an in-memory WriteSyncer for capturing log output.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) Sync() error { return nil }

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

var _ zapcore.WriteSyncer = (*syncBuffer)(nil)

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "voyage-test",
	}
}

func TestInitializeWritesStructuredOutput(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(testLoggerConfig(), buf)

	log := GetLogger()
	require.NotNil(t, log)
	log.Info("journey saved", zap.String("name", "rename-flow"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, `"msg":"journey saved"`)
	assert.Contains(t, out, `"name":"rename-flow"`)
	assert.Contains(t, out, "voyage-test")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &syncBuffer{}
	second := &syncBuffer{}
	Initialize(testLoggerConfig(), first)
	Initialize(testLoggerConfig(), second)

	GetLogger().Info("only once")
	_ = GetLogger().Sync()

	assert.Contains(t, first.String(), "only once")
	assert.Empty(t, second.String(), "second Initialize must be a no-op")
}

func TestInitializeInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "shouting"
	buf := &syncBuffer{}
	Initialize(cfg, buf)

	GetLogger().Debug("too quiet")
	GetLogger().Info("loud enough")
	_ = GetLogger().Sync()

	out := buf.String()
	assert.NotContains(t, out, "too quiet")
	assert.Contains(t, out, "loud enough")
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	assert.NotNil(t, GetLogger(), "fallback logger must always be available")
}

func TestSyncWithoutLoggerIsSafe(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)
	Sync()
}
