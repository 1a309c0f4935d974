package bitmapio

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bitmap IO helpers that use consistent field
// names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that writes text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithName adds a blob or file name field.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogEncode logs an encode operation.
func (l *Logger) LogEncode(ctx context.Context, enc Encoding, bits, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"encoding", enc.String(),
			"bits", bits,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "encode completed",
			"encoding", enc.String(),
			"bits", bits,
			"bytes", size,
		)
	}
}

// LogDecode logs a decode operation.
func (l *Logger) LogDecode(ctx context.Context, enc Encoding, bits, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"bytes", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "decode completed",
			"encoding", enc.String(),
			"bits", bits,
			"bytes", size,
		)
	}
}

// LogOpen logs opening a bitmap file or blob.
func (l *Logger) LogOpen(ctx context.Context, name string, zeroCopy bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "bitmap opened",
			"name", name,
			"zero_copy", zeroCopy,
		)
	}
}

// LogStore logs a write to a file or blob store.
func (l *Logger) LogStore(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "bitmap stored",
			"name", name,
			"bytes", size,
		)
	}
}
