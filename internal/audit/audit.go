// Package audit is the append-only dispatch log. Every dispatch decision and
// delivery outcome is written here as one timestamped JSON line, separately
// from the attempt ledger.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Logger is what the dispatcher writes to. Implementations must not fail the
// caller: a lost audit line is reported elsewhere and dispatch goes on.
type Logger interface {
	Log(level Level, msg string)
	With(fields map[string]any) Logger
}

type Config struct {
	LogDir   string
	FileName string
	Console  bool
}

// ZerologAudit writes audit lines through zerolog.
type ZerologAudit struct {
	log zerolog.Logger
}

// Open opens (or creates) the audit file in append mode.
func Open(cfg Config) (*ZerologAudit, io.Closer, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create audit log dir: %w", err)
	}

	path := filepath.Join(cfg.LogDir, cfg.FileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}

	var w io.Writer = file
	if cfg.Console {
		w = io.MultiWriter(file, os.Stdout)
	}
	return New(w), file, nil
}

func New(w io.Writer) *ZerologAudit {
	return &ZerologAudit{
		log: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (a *ZerologAudit) Log(level Level, msg string) {
	var ev *zerolog.Event
	switch level {
	case LevelWarning:
		ev = a.log.Warn()
	case LevelError:
		ev = a.log.Error()
	default:
		ev = a.log.Info()
	}
	// zerolog reports write errors through zerolog.ErrorHandler, never to us
	ev.Msg(msg)
}

func (a *ZerologAudit) With(fields map[string]any) Logger {
	ctx := a.log.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &ZerologAudit{log: ctx.Logger()}
}

// Nop discards everything.
type Nop struct{}

func (Nop) Log(Level, string)            {}
func (n Nop) With(map[string]any) Logger { return n }
