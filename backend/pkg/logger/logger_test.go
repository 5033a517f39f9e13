package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_Levels(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	require.NoError(t, Init("production"))
	assert.False(t, Logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, Logger.Core().Enabled(zap.InfoLevel))

	require.NoError(t, Init("development"))
	assert.True(t, Logger.Core().Enabled(zap.DebugLevel))
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { Logger = nil })
	require.NoError(t, Init("production"))

	require.NoError(t, SetLevel("warn"))
	assert.False(t, Logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, Logger.Core().Enabled(zap.WarnLevel))

	assert.Error(t, SetLevel("loud"))
}

func TestGet_WithoutInit(t *testing.T) {
	Logger = nil
	assert.NotNil(t, Get())
	assert.NotNil(t, Named("graph"))
}
