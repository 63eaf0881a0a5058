package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimple_LogsWithoutPanicking(t *testing.T) {
	log := NewSimple("test")
	require.NotNil(t, log)
	assert.NotPanics(t, func() {
		log.Info("hello", "key", "value")
		log.Debug("debugging")
		log.Trace("tracing")
	})
}

func TestNew_DevelopmentConfigWritesToStderr(t *testing.T) {
	log, err := New("sdjwt-test", "", false)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNew_ProductionConfigWritesToLogPath(t *testing.T) {
	dir := t.TempDir()
	log, err := New("sdjwt-test", dir, true)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("issued credential") })
}

func TestLog_NewChildLoggerCarriesName(t *testing.T) {
	log := NewSimple("root")
	child := log.New("child")
	require.NotNil(t, child)
	assert.NotPanics(t, func() { child.Info("nested") })
}
