// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package logging

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logger used by invocation entry points, backends
// and tools. The collections themselves do not log.
type Logger struct {
	*slog.Logger
}

func New(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a logger writing logfmt style lines.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a logger writing one JSON object per record.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewStderrLogger creates a text logger on stderr, as used by the tools.
func NewStderrLogger(verbose bool) *Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return NewTextLogger(os.Stderr, level)
}

// NewNopLogger creates a logger discarding all records.
func NewNopLogger() *Logger {
	return New(nopHandler{})
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithComponent tags all records with the name of the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With(Component(name))
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Method(name string) slog.Attr {
	return slog.String("method", name)
}

// Key renders a world state key in hex.
func Key(key []byte) slog.Attr {
	return slog.String("key", hex.EncodeToString(key))
}

// Hash renders a state hash in hex.
func Hash(hash []byte) slog.Attr {
	return slog.String("hash", hex.EncodeToString(hash))
}

func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Error creates an error attribute; nil errors produce an empty attribute
// which handlers drop.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
