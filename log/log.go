// Copyright 2025 The netfight Authors
// This file is part of the netfight library.
//
// The netfight library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The netfight library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the netfight library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides namespace-scoped, leveled, structured key/value
// logging in the call-site idiom used throughout netfight:
// log.Info("message", "key", value, "key2", value2).
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a logging verbosity threshold.
type Level int

const (
	LvlError Level = iota
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var lvlNames = map[Level]string{
	LvlError: "ERROR",
	LvlWarn:  "WARN",
	LvlInfo:  "INFO",
	LvlDebug: "DEBUG",
	LvlTrace: "TRACE",
}

// ParseLevel converts a name ("info", "debug", ...) into a Level. It
// defaults to LvlInfo on an unrecognized name.
func ParseLevel(s string) Level {
	switch s {
	case "error":
		return LvlError
	case "warn":
		return LvlWarn
	case "debug":
		return LvlDebug
	case "trace":
		return LvlTrace
	default:
		return LvlInfo
	}
}

// Logger is a namespaced structured logger. Each package that logs uses its
// own namespace: rollback, assets, live, orchestrator, vm, transport, cmd.
type Logger struct {
	ns string
}

// New returns a Logger scoped to the given namespace.
func New(namespace string) *Logger {
	return &Logger{ns: namespace}
}

var (
	mu       sync.Mutex
	minLevel = LvlInfo
	out      io.Writer = os.Stderr
	filter   map[string]bool
)

// SetLevel sets the process-wide minimum level that will be emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// SetNamespaceFilter restricts emitted log lines to the given namespaces.
// A nil or empty set disables filtering (everything passes).
func SetNamespaceFilter(namespaces ...string) {
	mu.Lock()
	defer mu.Unlock()
	if len(namespaces) == 0 {
		filter = nil
		return
	}
	filter = make(map[string]bool, len(namespaces))
	for _, n := range namespaces {
		filter[n] = true
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func (l *Logger) log(lvl Level, msg string, ctx ...interface{}) {
	mu.Lock()
	allowed := lvl <= minLevel
	nsOK := filter == nil || filter[l.ns]
	w := out
	mu.Unlock()
	if !allowed || !nsOK {
		return
	}

	var sb []byte
	sb = append(sb, time.Now().UTC().Format("15:04:05.000")...)
	sb = append(sb, ' ')
	sb = append(sb, '[')
	sb = append(sb, lvlNames[lvl]...)
	sb = append(sb, ']', ' ')
	if l.ns != "" {
		sb = append(sb, l.ns...)
		sb = append(sb, ' ')
	}
	sb = append(sb, msg...)
	for i := 0; i+1 < len(ctx); i += 2 {
		sb = append(sb, ' ')
		sb = append(sb, fmt.Sprintf("%v", ctx[i])...)
		sb = append(sb, '=')
		sb = append(sb, fmt.Sprintf("%v", ctx[i+1])...)
	}
	if lvl == LvlError {
		c := stack.Caller(2)
		sb = append(sb, fmt.Sprintf(" caller=%+v", c)...)
	}
	sb = append(sb, '\n')
	w.Write(sb)
}

// Error logs at error level and includes the call site.
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LvlError, msg, ctx...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, ctx ...interface{}) { l.log(LvlWarn, msg, ctx...) }

// Info logs at info level.
func (l *Logger) Info(msg string, ctx ...interface{}) { l.log(LvlInfo, msg, ctx...) }

// Debug logs at debug level.
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LvlDebug, msg, ctx...) }

// Trace logs at trace level.
func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LvlTrace, msg, ctx...) }
