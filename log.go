package depot

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newWorldLogger(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.Disabled
	}
	return zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Str("world", uuid.NewString()).
		Logger()
}

// Logger returns the world's logger for callers that want to attach
// their own context to engine log lines.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}
