package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Log is the process-wide logger. Console output by default; set
// LOG_FORMAT=json for machine-readable output in deployments.
var Log zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out zerolog.Logger
	if os.Getenv("LOG_FORMAT") == "json" {
		out = zerolog.New(os.Stdout)
	} else {
		out = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	Log = out.Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// SetLevel adjusts the global level; unknown names keep info and warn once.
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
