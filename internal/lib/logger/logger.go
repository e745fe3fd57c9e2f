package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/wolt-backend/internal/lib/logger/handlers/slogpretty"
)

// switching logger
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger инициализирует логгер в зависимости от переданного окружения
// для локальной разработки используется цветной вывод (pretty), а для dev/prod – JSON
func SetupLogger(env string) *slog.Logger {
	return New(env, os.Stdout)
}

// New - то же, что SetupLogger, но с произвольным выводом
func New(env string, out io.Writer) *slog.Logger {
	switch env {
	case EnvLocal:
		return setupPrettySlog(out)
	case EnvDev:
		return slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
}

// Err - атрибут с ошибкой для логов
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Discard - логгер для тестов, все пишет в никуда
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	color.NoColor = false

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(out)
	return slog.New(handler)
}
