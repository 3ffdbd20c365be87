package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chartcard.log")
	logger, err := New("debug", path)
	require.NoError(t, err)

	logger.Debug("card mounted")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"card mounted"`)
	assert.Contains(t, string(data), `"service":"chartcard"`)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chartcard.log")
	logger, err := New("WARN", path)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", "")
	assert.Error(t, err)
}
