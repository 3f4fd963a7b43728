// Package logging sets up the process-wide zerolog logger.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

type Config struct {
	Level  string    `yaml:"level"`
	Format string    `yaml:"format"` // json or console
	Output io.Writer `yaml:"-"`
}

// Init replaces the process logger. Safe to call more than once; the last
// call wins.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()

	mu.Lock()
	logger = l
	mu.Unlock()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the process logger.
func Get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// Component returns a child logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// WithRequestID stores a request id for FromContext.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns the process logger carrying the request id, if any.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := Get()
	if id := RequestID(ctx); id != "" {
		child := l.With().Str("req_id", id).Logger()
		return &child
	}
	return l
}
