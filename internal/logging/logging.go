// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// New returns a logger configured from cfg writing to out. The level comes
// from log.level; translate.debug forces debug.
func New(cfg *model.AppConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := logrus.InfoLevel
	if cfg != nil && cfg.Log.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", cfg.Log.Level, err)
		}
		level = parsed
	}
	if cfg != nil && cfg.Translate.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return logger, nil
}

// NewFile returns a logger that appends to the configured log file, or
// model.DefaultLogPath when none is set. The TUI uses it so log output does
// not corrupt the screen. The returned closer closes the file.
func NewFile(cfg *model.AppConfig) (*logrus.Logger, io.Closer, error) {
	path := model.DefaultLogPath()
	if cfg != nil && cfg.Log.File != "" {
		path = cfg.Log.File
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	logger, err := New(cfg, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
