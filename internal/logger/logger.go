package logger

import (
	"os"
	"time"

	"github.com/L33hy/cse340/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Development gets human-readable,
// colorized console output; production keeps structured JSON.
func Init(env config.Environment) {
	if env == config.Development {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Add a hook to include the caller's file and line number
	log.Logger = log.With().Caller().Logger()
}
