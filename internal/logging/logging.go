package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

// Options параметры глобального логгера
type Options struct {
	File   string // пусто: без файла
	Level  string // debug|info|warn|error
	Stdout bool   // дублировать в stdout (в TUI выключено)
}

var (
	once sync.Once
	base *slog.Logger
)

// Init настраивает глобальный логгер один раз
func Init(component string, opts Options) *slog.Logger {
	once.Do(func() {
		writers := make([]io.Writer, 0, 2)
		if opts.Stdout {
			writers = append(writers, os.Stdout)
		}
		if opts.File != "" {
			_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    20, // MB
				MaxBackups: 3,
				MaxAge:     7, // days
			})
		}
		var w io.Writer = io.Discard
		if len(writers) > 0 {
			w = io.MultiWriter(writers...)
		}

		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
		base = slog.New(h).With("component", component)
	})
	return base
}

// ParseLevel переводит строку в slog.Level, по умолчанию info
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Base глобальный логгер; до Init возвращает slog.Default()
func Base() *slog.Logger {
	if base == nil {
		return slog.Default()
	}
	return base
}

// New дочерний логгер компонента
func New(component string) *slog.Logger {
	return Base().With("component", component)
}

// Discard логгер для тестов
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithCtx кладёт логгер в контекст
func WithCtx(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromCtx логгер из контекста либо глобальный
func FromCtx(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Base()
}
