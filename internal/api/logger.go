package api

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/sirupsen/logrus"
)

var defaultLogger *logrus.Logger

// JSONFormatter JSON formatter alias (used by tests)
type JSONFormatter = logrus.JSONFormatter

// NewLogger creates a logger with the default JSON setup
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "time",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	})
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(os.Stdout)
	return logger
}

// NewLoggerFromConfig creates a logger from the log configuration
func NewLoggerFromConfig(cfg *config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "time",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FullTimestamp:   true,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var writers []io.Writer
	if cfg.Output == "stdout" || cfg.Output == "both" {
		writers = append(writers, os.Stdout)
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		logDir := "logs"
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}

		logFile := filepath.Join(logDir, "talawang-api.log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	logger.SetOutput(io.MultiWriter(writers...))

	// stable field for log aggregation
	logger.AddHook(&defaultFieldsHook{
		fields: map[string]interface{}{
			"service": "talawang-api",
		},
	})

	return logger, nil
}

// defaultFieldsHook injects fixed fields into every entry
type defaultFieldsHook struct {
	fields map[string]interface{}
}

func (h *defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *defaultFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		entry.Data[k] = v
	}
	return nil
}

// GetLogger returns the process-wide default logger
func GetLogger() *logrus.Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger()
	}
	return defaultLogger
}

// SetDefaultLogger installs the process-wide default logger. Everything
// that logs through GetLogger (the access log included) picks it up.
func SetDefaultLogger(logger *logrus.Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// SetLoggerOutput redirects the default logger output
func SetLoggerOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}

// SetLoggerLevel adjusts the default logger level
func SetLoggerLevel(level logrus.Level) {
	GetLogger().SetLevel(level)
}
