package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	serviceName    = "escrowbot"
	serviceVersion = "1.0.0"
)

type Config struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	TimeFormat string `yaml:"time_format"`
	Pretty     bool   `yaml:"pretty"`
}

func New() zerolog.Logger {
	return NewWithConfig(Config{
		Level:      "info",
		TimeFormat: time.RFC3339,
	})
}

func NewWithConfig(config Config) zerolog.Logger {
	return NewWithWriter(config, os.Stdout)
}

// NewWithWriter builds the service logger on top of out. A pretty config
// wraps out in a colourised console writer.
func NewWithWriter(config Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	if config.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				s, _ := i.(string)
				return colorizeLevel(s)
			},
		}
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Str("version", serviceVersion).
		Logger()
}

func colorizeLevel(level string) string {
	var color string
	switch level {
	case "trace":
		color = "\033[35m"
	case "debug":
		color = "\033[36m"
	case "info":
		color = "\033[32m"
	case "warn":
		color = "\033[33m"
	case "error":
		color = "\033[31m"
	case "fatal", "panic":
		color = "\033[91m"
	default:
		return level
	}
	return color + level + "\033[0m"
}
