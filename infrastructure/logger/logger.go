package logger

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spooky-finn/go-okx-orderbook/config"
)

type Logger = zerolog.Logger

// NewLogger configures the global zerolog logger from cfg and returns it.
// Components derive their own logger with For.
func NewLogger(cfg config.Config) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	var l zerolog.Logger
	if cfg.Logging.Pretty {
		l = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = log.Logger
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.DebugMode {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = l
	return l
}

// For returns a child of the global logger tagged with a component name.
func For(component string) Logger {
	return log.Logger.With().Str("component", component).Logger()
}
