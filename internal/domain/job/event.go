package job

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is the severity carried by a log event. Unknown levels are kept verbatim.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// IsError reports whether l is the ERROR level. Comparison ignores case and surrounding space.
func (l Level) IsError() bool {
	return strings.EqualFold(strings.TrimSpace(string(l)), string(LevelError))
}

// Tone maps a level to the console colour class used when rendering.
func (l Level) Tone() string {
	switch strings.ToUpper(strings.TrimSpace(string(l))) {
	case string(LevelError):
		return "error"
	case string(LevelWarning):
		return "warning"
	case string(LevelInfo):
		return "info"
	default:
		return "default"
	}
}

// LogEvent is one line of a job's console. The JSON shape matches the backend stream.
type LogEvent struct {
	ID        string `json:"-"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewLogEvent builds a locally synthesized event stamped with the current UTC time.
func NewLogEvent(level Level, message string) LogEvent {
	return LogEvent{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Info is shorthand for NewLogEvent(LevelInfo, message).
func Info(message string) LogEvent { return NewLogEvent(LevelInfo, message) }

// Error is shorthand for NewLogEvent(LevelError, message).
func Error(message string) LogEvent { return NewLogEvent(LevelError, message) }
