package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger writing to stdout.
func Init(logLevelStr string, appEnv string) zerolog.Level {
	return InitWithWriter(os.Stdout, logLevelStr, appEnv)
}

// InitWithWriter initializes the global zerolog logger writing to w. Development
// environments get a human readable console writer. The standard library logger
// is redirected to zerolog. It returns the level in effect.
func InitWithWriter(w io.Writer, logLevelStr string, appEnv string) zerolog.Level {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(logLevelStr)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := w
	if IsDevelopment(appEnv) {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Str("service", "profile-manager").Logger()

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	if err != nil {
		log.Warn().Err(err).Msgf("Invalid log level '%s', defaulting to 'info'", logLevelStr)
	}
	return level
}

func IsDevelopment(appEnv string) bool {
	env := strings.ToLower(appEnv)
	return env == "development" || env == "dev"
}
