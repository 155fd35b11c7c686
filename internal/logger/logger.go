package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig defines the configuration for the logger.
type LoggerConfig struct {
	Level      string    // Log level (e.g., "info", "debug", "error")
	FilePath   string    // Path to the log file; empty disables the file sink
	MaxSize    int       // Maximum size in megabytes before log rotation
	MaxBackups int       // Maximum number of old log files to retain
	MaxAge     int       // Maximum number of days to retain old log files
	Compress   bool      // Whether to compress rotated log files
	Console    io.Writer // Console sink; nil means stderr
	JSON       bool      // JSON on the console instead of text
}

// NewLogger returns a logrus.Logger configured according to cfg. The file
// sink always writes JSON and rotates with lumberjack.
func NewLogger(cfg LoggerConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	if cfg.FilePath == "" {
		logger.SetFormatter(consoleFormatter(cfg.JSON))
		logger.SetOutput(console)
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}
	logger.SetFormatter(jsonFormatter())
	logger.SetOutput(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	// Console lines keep their own formatting.
	logger.AddHook(&writerHook{out: console, formatter: consoleFormatter(cfg.JSON)})
	return logger, nil
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
			logrus.FieldKeyFunc:  "function",
		},
	}
}

func consoleFormatter(json bool) logrus.Formatter {
	if json {
		return jsonFormatter()
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	}
}

// writerHook copies every entry to an extra writer with its own formatter.
type writerHook struct {
	out       io.Writer
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}

// Discard returns a logger that drops everything; handy for tests and
// library callers that do not care.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithImage returns a logger entry scoped to one image.
func WithImage(logger logrus.FieldLogger, key string) *logrus.Entry {
	return logger.WithField("image", key)
}

// WithOperation returns a logger entry with the specified operation context.
func WithOperation(logger logrus.FieldLogger, operation string) *logrus.Entry {
	return logger.WithField("operation", operation)
}

// DefaultConfig returns the default LoggerConfig.
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Level:      "info",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}
}
