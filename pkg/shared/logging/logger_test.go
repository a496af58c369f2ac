// 指示: miu200521358
package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelFiltering(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger := NewLogger(buf)

	logger.Debug("debug=%d", 1)
	logger.Info("info=%d", 2)
	assert.NotContains(t, buf.String(), "debug=1")
	assert.Contains(t, buf.String(), "info=2")
	assert.Contains(t, buf.String(), "component=mu_avatar_tinker")

	logger.SetLevel(LOG_LEVEL_DEBUG)
	logger.Debug("debug=%d", 3)
	assert.Contains(t, buf.String(), "debug=3")
	assert.Equal(t, LOG_LEVEL_DEBUG, logger.Level())

	logger.SetLevel(LOG_LEVEL_ERROR)
	logger.Warn("warn=%d", 4)
	logger.Error("error=%d", 5)
	assert.NotContains(t, buf.String(), "warn=4")
	assert.Contains(t, buf.String(), "error=5")
	assert.True(t, logger.IsLevelEnabled(LOG_LEVEL_ERROR))
	assert.False(t, logger.IsLevelEnabled(LOG_LEVEL_WARN))
}

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]LogLevel{
		"debug":   LOG_LEVEL_DEBUG,
		" INFO ":  LOG_LEVEL_INFO,
		"":        LOG_LEVEL_INFO,
		"warning": LOG_LEVEL_WARN,
		"Warn":    LOG_LEVEL_WARN,
		"error":   LOG_LEVEL_ERROR,
	}
	for name, want := range testCases {
		got, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestSetDefaultLogger(t *testing.T) {
	original := DefaultLogger()
	t.Cleanup(func() { SetDefaultLogger(original) })

	buf := bytes.NewBuffer(nil)
	logger := NewLogger(buf)
	SetDefaultLogger(logger)
	SetDefaultLogger(nil)

	assert.Same(t, logger, DefaultLogger())
	DefaultLogger().Info("default=%s", "ok")
	assert.Contains(t, buf.String(), "default=ok")
}
