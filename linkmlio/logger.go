package linkmlio

import (
	"log/slog"
	"os"

	charmlog "charm.land/log/v2"
)

// SlogLogger adapts the standard library's log/slog to linkml.Logger, the
// default when no richer logger is wired in.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a SlogLogger writing JSON lines to os.Stderr.
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{logger: slog.New(slog.NewJSONHandler(os.Stderr, nil))}
}

func (l *SlogLogger) Debug(msg string, kv ...any) { l.logger.Debug(msg, kv...) }
func (l *SlogLogger) Info(msg string, kv ...any)  { l.logger.Info(msg, kv...) }
func (l *SlogLogger) Warn(msg string, kv ...any)  { l.logger.Warn(msg, kv...) }
func (l *SlogLogger) Error(msg string, kv ...any) { l.logger.Error(msg, kv...) }

// CharmLogger adapts charm.land/log/v2's styled logger to linkml.Logger,
// for CLI-facing output (cmd/linkmlctl) where readability matters more
// than machine-parseable lines.
type CharmLogger struct {
	logger *charmlog.Logger
}

// NewCharmLogger returns a CharmLogger writing styled output to os.Stderr.
func NewCharmLogger() *CharmLogger {
	return &CharmLogger{logger: charmlog.New(os.Stderr)}
}

func (l *CharmLogger) Debug(msg string, kv ...any) { l.logger.Debug(msg, kv...) }
func (l *CharmLogger) Info(msg string, kv ...any)  { l.logger.Info(msg, kv...) }
func (l *CharmLogger) Warn(msg string, kv ...any)  { l.logger.Warn(msg, kv...) }
func (l *CharmLogger) Error(msg string, kv ...any) { l.logger.Error(msg, kv...) }
