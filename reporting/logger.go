package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/rhyru9/osgit/core"
)

// LogLevel represents logging severity
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (lv LogLevel) String() string {
	switch lv {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "OFF"
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// prefix styles, shared by every logger
type style struct {
	tag   string
	color *color.Color
}

var (
	debugStyle   = style{"[*]", color.New(color.FgCyan)}
	infoStyle    = style{"[*]", color.New(color.FgBlue, color.Bold)}
	warnStyle    = style{"[!]", color.New(color.FgYellow, color.Bold)}
	errorStyle   = style{"[-]", color.New(color.FgRed, color.Bold)}
	successStyle = style{"[+]", color.New(color.FgGreen, color.Bold)}
)

// LogEntry is one line of a JSON log file
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Module    string `json:"module,omitempty"`
	Message   string `json:"message"`
}

// Logger writes leveled, colored messages to the console and, optionally,
// uncolored lines to a log file. Child loggers share the sink and its lock.
type Logger struct {
	level    LogLevel
	module   string
	jsonMode bool
	sink     *sink
}

type sink struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
}

// NewLogger creates a console logger, appending to logFile when it is set
func NewLogger(logFile string, level LogLevel, jsonMode bool) (*Logger, error) {
	s := &sink{out: color.Output}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		s.file = f
	}
	return &Logger{level: level, jsonMode: jsonMode, sink: s}, nil
}

// Discard returns a logger that writes nowhere
func Discard() *Logger {
	return &Logger{level: ERROR + 1, sink: &sink{out: io.Discard}}
}

// WithModule returns a child logger whose lines are tagged with module
func (l *Logger) WithModule(module string) *Logger {
	child := *l
	child.module = module
	return &child
}

// SetOutput redirects console output
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.out = w
}

// Level returns the minimum level that is emitted
func (l *Logger) Level() LogLevel {
	return l.level
}

// Close closes the log file
func (l *Logger) Close() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		l.sink.file.Close()
		l.sink.file = nil
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	l.emit(DEBUG, debugStyle, format, args)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...any) {
	l.emit(INFO, infoStyle, format, args)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) {
	l.emit(WARN, warnStyle, format, args)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	l.emit(ERROR, errorStyle, format, args)
}

// Success logs a green [+] line at INFO level
func (l *Logger) Success(format string, args ...any) {
	l.emit(INFO, successStyle, format, args)
}

func (l *Logger) emit(level LogLevel, st style, format string, args []any) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)

	prefix := st.tag
	if l.module != "" {
		prefix += "[" + l.module + "]"
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	st.color.Fprint(l.sink.out, prefix+" ")
	fmt.Fprintln(l.sink.out, msg)

	if l.sink.file != nil {
		fmt.Fprintln(l.sink.file, l.fileLine(level, core.StripANSI(msg)))
	}
}

func (l *Logger) fileLine(level LogLevel, msg string) string {
	now := time.Now().UTC()
	if l.jsonMode {
		data, _ := json.Marshal(LogEntry{
			Timestamp: now.Format(time.RFC3339),
			Level:     level.String(),
			Module:    l.module,
			Message:   msg,
		})
		return string(data)
	}
	if l.module != "" {
		return fmt.Sprintf("%s [%s][%s] %s", now.Format("2006-01-02 15:04:05"), level, l.module, msg)
	}
	return fmt.Sprintf("%s [%s] %s", now.Format("2006-01-02 15:04:05"), level, msg)
}
