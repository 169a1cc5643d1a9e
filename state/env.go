// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"docxml/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// RunID marks log entries and report data of a single program run.
	RunID string

	// used by convert subcommand
	NoDirs    bool
	Overwrite bool
	CodePage  encoding.Encoding

	stylesheet    []byte
	styleLoaded   bool
	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Stylesheet returns content of configured stylesheet file, it is read once.
func (e *LocalEnv) Stylesheet() ([]byte, error) {
	if e.styleLoaded {
		return e.stylesheet, nil
	}
	if e.Cfg == nil || e.Cfg.Document.StylesheetPath == "" {
		e.styleLoaded = true
		return nil, nil
	}

	data, err := os.ReadFile(e.Cfg.Document.StylesheetPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	e.Rpt.Store("stylesheet.css", e.Cfg.Document.StylesheetPath)
	e.stylesheet, e.styleLoaded = data, true
	return data, nil
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
