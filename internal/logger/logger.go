// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a go-flags option group shared by all commands.
type Logger struct {
	Level  string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"console" choice:"json" default:"console"`
	Output string `long:"log-output" env:"LOG_OUTPUT" description:"Log output" choice:"stdout" choice:"stderr" default:"stdout"`
}

// Setup applies the options to the global logger.
func (l Logger) Setup() {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(l.writer()).With().Timestamp().Logger()
}

func (l Logger) writer() io.Writer {
	var out io.Writer = os.Stdout
	if l.Output == "stderr" {
		out = os.Stderr
	}

	if l.Format == "json" {
		return out
	}

	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
}
