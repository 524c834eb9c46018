package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelDebug LogLevel = "DEBUG"
	LevelError LogLevel = "ERROR"
)

type LogFields map[string]interface{}

type Logger interface {
	WithFields(fields LogFields) Logger

	Info(action, message string)
	Warn(action, message string)
	Debug(action, message string)
	Error(action string, err error)
}

// jsonLogger writes one JSON object per log line.
type jsonLogger struct {
	mu         sync.Mutex // Ensures concurrent writes are safe
	out        *os.File
	service    string    // The name of the service (e.g., "earnings-service")
	hostname   string
	baseFields LogFields // Fields to include in every log entry (e.g., driver_id)
}

// logEntry is the wire structure of a log line.
// omitempty keeps entries compact.
type logEntry struct {
	Timestamp  string   `json:"timestamp"`
	Level      LogLevel `json:"level"`
	Service    string   `json:"service"`
	Action     string   `json:"action"`
	Message    string   `json:"message"`
	Hostname   string   `json:"hostname"`
	RequestID  string   `json:"request_id,omitempty"`
	DriverID   string   `json:"driver_id,omitempty"`
	DeliveryID string   `json:"delivery_id,omitempty"`

	// Error details
	Error *errorEntry `json:"error,omitempty"`

	// Other dynamic fields
	Fields LogFields `json:"fields,omitempty"`
}

// errorEntry contains formatted error information.
type errorEntry struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack"`
}

// NewLogger creates a structured JSON logger for a named service.
func NewLogger(serviceName string) Logger {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &jsonLogger{
		out:        os.Stdout,
		service:    serviceName,
		hostname:   host,
		baseFields: make(LogFields),
	}
}

// WithFields returns a logger that includes the given fields on every entry,
// inheriting whatever the receiver already carries.
func (l *jsonLogger) WithFields(fields LogFields) Logger {
	newFields := make(LogFields, len(l.baseFields)+len(fields))
	for k, v := range l.baseFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &jsonLogger{
		out:        l.out,
		service:    l.service,
		hostname:   l.hostname,
		baseFields: newFields,
	}
}

// Info logs a message at the INFO level.
func (l *jsonLogger) Info(action, message string) {
	l.log(LevelInfo, action, message, nil)
}

// Warn logs a message at the WARN level. Used for fail-soft conditions
// (e.g. a parcel type with no pricing tier) that degrade a result without
// failing the request.
func (l *jsonLogger) Warn(action, message string) {
	l.log(LevelWarn, action, message, nil)
}

// Debug logs a message at the DEBUG level.
func (l *jsonLogger) Debug(action, message string) {
	l.log(LevelDebug, action, message, nil)
}

// Error logs an error, including a trimmed stack trace.
func (l *jsonLogger) Error(action string, err error) {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	stack := cleanStack(string(buf[:n]))

	errData := &errorEntry{
		Msg:   err.Error(),
		Stack: stack,
	}
	l.log(LevelError, action, err.Error(), errData)
}

// log constructs and writes a single entry.
func (l *jsonLogger) log(level LogLevel, action, message string, errData *errorEntry) {
	entry := &logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Service:   l.service,
		Action:    action,
		Message:   message,
		Hostname:  l.hostname,
		Error:     errData,
		Fields:    make(LogFields),
	}

	// Promote well-known fields to top-level JSON keys.
	for k, v := range l.baseFields {
		switch k {
		case "driver_id":
			if id, ok := v.(string); ok {
				entry.DriverID = id
				continue
			}
		case "delivery_id":
			if id, ok := v.(string); ok {
				entry.DeliveryID = id
				continue
			}
		case "request_id":
			if id, ok := v.(string); ok {
				entry.RequestID = id
				continue
			}
		}
		entry.Fields[k] = v
	}

	if len(entry.Fields) == 0 {
		entry.Fields = nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		fmt.Fprintf(os.Stderr, "Failed to marshal log: %v\n", err)
		fmt.Fprintf(l.out, "%s [%s] %s: %s\n", entry.Timestamp, entry.Level, entry.Action, entry.Message)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(line))
}

// cleanStack strips Go runtime internals from a stack trace.
func cleanStack(stack string) string {
	lines := strings.Split(stack, "\n")
	var cleaned []string

	if len(lines) > 0 {
		cleaned = append(cleaned, lines[0]) // goroutine header
	}

	for i := 1; i+1 < len(lines); i += 2 {
		funcName := lines[i]
		filePath := strings.TrimSpace(lines[i+1])

		if strings.HasPrefix(funcName, "runtime.") ||
			strings.HasPrefix(funcName, "testing.") ||
			strings.Contains(funcName, "logger.") ||
			strings.Contains(filePath, "runtime/panic.go") {
			continue
		}

		cleaned = append(cleaned, funcName, "    "+filePath)
	}

	return strings.Join(cleaned, "\n")
}
