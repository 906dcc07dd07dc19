package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptLogLevel_Error(t *testing.T) {
	assert.False(t, acceptLogLevel(LogLevelError, LogLevelDebug))
	assert.False(t, acceptLogLevel(LogLevelError, LogLevelInfo))
	assert.False(t, acceptLogLevel(LogLevelError, LogLevelWarning))
	assert.True(t, acceptLogLevel(LogLevelError, LogLevelError))
}

func TestAcceptLogLevel_Info(t *testing.T) {
	assert.False(t, acceptLogLevel(LogLevelInfo, LogLevelDebug))
	assert.True(t, acceptLogLevel(LogLevelInfo, LogLevelInfo))
	assert.True(t, acceptLogLevel(LogLevelInfo, LogLevelWarning))
	assert.True(t, acceptLogLevel(LogLevelInfo, LogLevelError))
}

func TestInitLoggerRejectsUnsupportedLevel(t *testing.T) {
	assert.Error(t, InitLogger("verbose"))
}

func TestInitLoggerDefaultsToInfo(t *testing.T) {
	assert.NoError(t, InitLogger(""))
	assert.Equal(t, LogLevelInfo, LogLevel)
}
