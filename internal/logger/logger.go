package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path

	// Rotation of file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a sensible default logging configuration
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stderr",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Setup initializes the global logger with the provided configuration
func Setup(config LogConfig) error {
	output, err := openOutput(config)
	if err != nil {
		return err
	}

	l, err := New(config, output)
	if err != nil {
		return err
	}

	level, _ := zerolog.ParseLevel(strings.ToLower(config.Level))
	zerolog.SetGlobalLevel(level)

	// Configure time format
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	// Set global logger
	log.Logger = l
	return nil
}

// New builds a logger writing to output without touching global state.
func New(config LogConfig, output io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	// Configure format
	switch strings.ToLower(config.Format) {
	case "json":
		// JSON format is the default for zerolog
	default:
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
			NoColor:    config.Output != "stdout" && config.Output != "stderr",
		}
	}

	return zerolog.New(output).Level(level).With().
		Timestamp().
		Logger(), nil
}

// openOutput resolves the configured output. Anything other than stdout or
// stderr is a file path, rotated through lumberjack.
func openOutput(config LogConfig) (io.Writer, error) {
	switch config.Output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		return &lumberjack.Logger{
			Filename:   config.Output,
			LocalTime:  true,
			Compress:   config.Compress,
			MaxSize:    config.MaxSizeMB,
			MaxAge:     config.MaxAgeDays,
			MaxBackups: config.MaxBackups,
		}, nil
	}
}

// GetLogger returns a logger instance
func GetLogger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithRequestID returns a logger with a request ID field
func WithRequestID(requestID string) zerolog.Logger {
	return log.Logger.With().Str("request_id", requestID).Logger()
}

// WithJobID returns a logger with a job ID field
func WithJobID(jobID string) zerolog.Logger {
	return log.Logger.With().Str("job_id", jobID).Logger()
}
