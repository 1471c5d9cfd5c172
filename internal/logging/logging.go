// Package logging provides config-driven categorized logging for the Dana
// runtime. Each runtime concern (parser, context, registry, interpreter,
// resources, reason(), module loader, sync adapter) gets its own named
// logger backed by zap, gated by debug_mode and a per-category enable map
// read from the runtime configuration.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging concern within the runtime.
type Category string

const (
	CategoryParser      Category = "parser"
	CategoryContext      Category = "context"
	CategoryRegistry     Category = "registry"
	CategoryInterp       Category = "interp"
	CategoryResource     Category = "resource"
	CategoryReason       Category = "reason"
	CategoryModule       Category = "module"
	CategoryConcurrency  Category = "concurrency"
	CategoryBoot         Category = "boot"
)

// Settings mirrors the `logging` section of the runtime configuration.
type Settings struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
	JSONFormat bool            `yaml:"json_format"`
	File       string          `yaml:"file"` // empty => stderr
}

var (
	mu       sync.RWMutex
	settings Settings
	loggers  = make(map[Category]*zap.SugaredLogger)
	base     *zap.Logger
)

// Configure installs runtime-wide logging settings. Safe to call more than
// once (e.g. after a config reload); existing per-category loggers are
// rebuilt lazily on next Get.
func Configure(s Settings) error {
	mu.Lock()
	defer mu.Unlock()
	settings = s
	loggers = make(map[Category]*zap.SugaredLogger)

	level := parseLevel(s.Level)
	var ws zapcore.WriteSyncer
	if s.File != "" {
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("logging: open log file: %w", err)
		}
		ws = zapcore.AddSync(f)
	} else {
		ws = zapcore.AddSync(os.Stderr)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if s.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, ws, level)
	base = zap.New(core)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsEnabled reports whether the category is allowed to emit output under
// the current configuration.
func IsEnabled(c Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, ok := settings.Categories[string(c)]
	if !ok {
		return true
	}
	return enabled
}

// Get returns the logger for a category, creating it on first use. Returns
// a discarding no-op logger when the category (or logging overall) is
// disabled, so call sites never need to branch on IsEnabled themselves.
func Get(c Category) *zap.SugaredLogger {
	mu.RLock()
	l, ok := loggers[c]
	b := base
	mu.RUnlock()
	if ok {
		return l
	}
	if !IsEnabled(c) || b == nil {
		return zap.NewNop().Sugar()
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	sl := base.With(zap.String("category", string(c))).Sugar()
	loggers[c] = sl
	return sl
}

// Timer measures and logs the duration of an operation on a category.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation under a category.
func StartTimer(c Category, op string) *Timer {
	return &Timer{category: c, op: op, start: time.Now()}
}

// Stop ends the timer, logging at debug level, and returns the elapsed time.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo is like Stop but logs at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Infof("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the elapsed time exceeds threshold,
// otherwise logs at debug level.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
