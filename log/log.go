package log

import (
	"os"

	"log/slog"
)

type Config struct {
	Level     int  `mapstructure:"level"`
	AddSource bool `mapstructure:"add_source"`
}

// NewLogger builds the JSON slog logger the whole service shares.
func NewLogger(c Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.Level(c.Level),
		AddSource: c.AddSource,
	}))
}
