package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config selects the log level, format ("json" or "text") and output
// ("stdout", "stderr", or a file path).
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DefaultConfig logs text at info level to stderr so CLI output on stdout stays clean.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", Output: "stderr"}
}

// New builds a logger from cfg. Empty fields fall back to DefaultConfig.
// The returned close func releases a log file and is a no-op for stdout and stderr.
func New(cfg Config) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	closeOutput, err := Setup(logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, closeOutput, nil
}

// Setup configures logger based on cfg.
func Setup(logger *logrus.Logger, cfg Config) (func() error, error) {
	def := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = def.Level
	}
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.Output == "" {
		cfg.Output = def.Output
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	closeOutput := func() error { return nil }

	var out io.Writer
	switch cfg.Output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Output, err)
		}
		out = file
		closeOutput = file.Close
	}
	logger.SetOutput(out)

	return closeOutput, nil
}
