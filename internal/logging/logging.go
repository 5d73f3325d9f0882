package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

type zeroLogger struct {
	zl    zerolog.Logger
	level Level
}

// New returns a JSON line logger writing to out. Pass a zerolog.ConsoleWriter
// as out for human-readable output.
func New(out io.Writer, level Level) Logger {
	if out == nil {
		out = os.Stdout
	}
	zl := zerolog.New(out).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &zeroLogger{zl: zl, level: level}
}

// NewConsole writes colorless logfmt-style lines, for terminals.
func NewConsole(out io.Writer, level Level) Logger {
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	return New(writer, level)
}

func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop(), level: Error + 1}
}

func (l *zeroLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	return level >= l.level
}

func (l *zeroLogger) With(fields ...Field) Logger {
	if l == nil {
		return Nop()
	}
	ctx := l.zl.With()
	for _, field := range fields {
		ctx = ctx.Interface(field.Key, normalizeValue(field.Value))
	}
	return &zeroLogger{zl: ctx.Logger(), level: l.level}
}

func (l *zeroLogger) Debug(msg string, fields ...Field) { l.log(l.zl.Debug, msg, fields) }
func (l *zeroLogger) Info(msg string, fields ...Field)  { l.log(l.zl.Info, msg, fields) }
func (l *zeroLogger) Warn(msg string, fields ...Field)  { l.log(l.zl.Warn, msg, fields) }
func (l *zeroLogger) Error(msg string, fields ...Field) { l.log(l.zl.Error, msg, fields) }

func (l *zeroLogger) log(start func() *zerolog.Event, msg string, fields []Field) {
	if l == nil {
		return
	}
	event := start()
	if event == nil {
		return
	}
	for _, field := range fields {
		switch v := field.Value.(type) {
		case error:
			event = event.AnErr(field.Key, v)
		default:
			event = event.Interface(field.Key, normalizeValue(v))
		}
	}
	event.Msg(msg)
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return v
	}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func levelString(level Level) string {
	switch level {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) String() string {
	return levelString(l)
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}
