// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger with a fixed "component" field, keeping
// the same Info/Error/Debug/Fatal call shape every service in this repo uses.
type Logger struct {
	component string
	sl        *zap.SugaredLogger
}

var (
	baseCore     zapcore.Core
	logFile      *os.File
	once         sync.Once
	debugEnabled bool
	debugMu      sync.RWMutex
	atomicLevel  = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// Init initializes the base zap core with stdout and a log file.
// Optionally enables debug if DEBUG env var is set.
func Init(logPath string) error {
	var err error
	once.Do(func() {
		logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return
		}

		mw := io.MultiWriter(os.Stdout, logFile)
		baseCore = newCore(mw)

		if os.Getenv("DEBUG") != "" {
			EnableDebug(true)
		}
	})
	return err
}

func newCore(w io.Writer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)
	return zapcore.NewCore(enc, zapcore.AddSync(w), atomicLevel)
}

// Close cleans up the log file (call on shutdown)
func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

// EnableDebug dynamically turns debug logging on/off
func EnableDebug(on bool) {
	debugMu.Lock()
	debugEnabled = on
	debugMu.Unlock()
	if on {
		atomicLevel.SetLevel(zap.DebugLevel)
	} else {
		atomicLevel.SetLevel(zap.InfoLevel)
	}
}

// IsDebug returns current debug state
func IsDebug() bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugEnabled
}

// New returns a component-scoped logger, lazily initializing a default
// file-backed core if Init was never called (mirrors the teacher's
// "usable before main() configures anything" convenience).
func New(component string) *Logger {
	Init("default.log")
	core := baseCore
	if core == nil {
		core = newCore(os.Stdout)
	}
	zl := zap.New(core).Sugar().With("component", component)
	return &Logger{component: component, sl: zl}
}

func (l *Logger) Info(fmtstr string, v ...any) {
	l.sl.Infof(fmtstr, v...)
}

func (l *Logger) Error(fmtstr string, v ...any) {
	l.sl.Errorf(fmtstr, v...)
}

func (l *Logger) Fatal(fmtstr string, v ...any) {
	l.sl.Errorf(fmtstr, v...)
	_ = l.sl.Sync()
	panic(l.component + ": " + fmtstr)
}

func (l *Logger) Debug(fmtstr string, v ...any) {
	l.sl.Debugf(fmtstr, v...)
}
