package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]interface{}

var (
	debugEnabled atomic.Bool
	std          = log.New(os.Stderr, "", 0)
)

// SetDebug toggles emission of debug lines (battle rounds are logged at debug level).
func SetDebug(enabled bool) { debugEnabled.Store(enabled) }

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) { std.SetOutput(w) }

func output(level, msg string, fields Fields) {
	line := make(Fields, len(fields)+3)
	for k, v := range fields {
		line[k] = v
	}
	line["level"] = level
	line["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	line["msg"] = msg
	b, err := json.Marshal(line)
	if err != nil {
		std.Printf("%s: %s (%v)", level, msg, fields)
		return
	}
	std.Println(string(b))
}

func withErr(fields Fields, err error) Fields {
	if err == nil {
		return fields
	}
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}

// Debug logs a message only when debug output is enabled.
func Debug(msg string, fields Fields) {
	if !debugEnabled.Load() {
		return
	}
	output("debug", msg, fields)
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output("info", msg, fields)
}

// Warn logs a recoverable problem.
func Warn(msg string, err error, fields Fields) {
	output("warn", msg, withErr(fields, err))
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	output("error", msg, withErr(fields, err))
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	output("fatal", msg, withErr(fields, err))
	os.Exit(1)
}
