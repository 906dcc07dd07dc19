package config

import (
	"log"
	"os"

	"github.com/pkg/errors"
)

// LoggerLevel is this module's logging level type. Grounded verbatim on
// yaricom-goNEAT/neat/log.go's leveled-logger idiom.
type LoggerLevel string

const (
	LogLevelDebug   LoggerLevel = "debug"
	LogLevelInfo    LoggerLevel = "info"
	LogLevelWarning LoggerLevel = "warn"
	LogLevelError   LoggerLevel = "error"
)

var (
	// LogLevel is the current logging level.
	LogLevel LoggerLevel

	loggerDebug = log.New(os.Stdout, "DEBUG: ", log.Ltime|log.Lshortfile)
	loggerInfo  = log.New(os.Stdout, "INFO: ", log.Ltime|log.Lshortfile)
	loggerWarn  = log.New(os.Stdout, "WARN: ", log.Ltime|log.Lshortfile)
	loggerError = log.New(os.Stderr, "ERROR: ", log.Ltime|log.Lshortfile)

	// DebugLog outputs at Debug level and up.
	DebugLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelDebug) {
			_ = loggerDebug.Output(2, message)
		}
	}
	// InfoLog outputs at Info level and up.
	InfoLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelInfo) {
			_ = loggerInfo.Output(2, message)
		}
	}
	// WarnLog outputs at Warn level and up.
	WarnLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelWarning) {
			_ = loggerWarn.Output(2, message)
		}
	}
	// ErrorLog outputs at Error level and up.
	ErrorLog = func(message string) {
		if acceptLogLevel(LogLevel, LogLevelError) {
			_ = loggerError.Output(2, message)
		}
	}
)

// InitLogger sets the active logging level.
func InitLogger(level string) error {
	switch LoggerLevel(level) {
	case LogLevelDebug:
		LogLevel = LogLevelDebug
	case LogLevelInfo, "":
		LogLevel = LogLevelInfo
	case LogLevelWarning:
		LogLevel = LogLevelWarning
	case LogLevelError:
		LogLevel = LogLevelError
	default:
		return errors.Errorf("unsupported log level: [%s]", level)
	}
	return nil
}

func acceptLogLevel(current, target LoggerLevel) bool {
	switch current {
	case LogLevelDebug:
		return true
	case LogLevelInfo:
		return target != LogLevelDebug
	case LogLevelWarning:
		return target == LogLevelWarning || target == LogLevelError
	case LogLevelError:
		return target == LogLevelError
	default:
		return false
	}
}
