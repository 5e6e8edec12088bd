package log

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	err := Init("verbose", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")

	// the previous logger stays active
	Info(nil, "still.here", nil)
	assert.Contains(t, buf.String(), `"msg":"still.here"`)
}

func TestInitLevelAndFile(t *testing.T) {
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	require.NoError(t, Init("warn", filepath.Join(t.TempDir(), "app.log")))
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Init("", ""))
	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))

	err := Init("info", filepath.Join(t.TempDir(), "missing", "app.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file")
}
