// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"fmt"
	"sync"
)

// Level is a log level recorded by a Recorder.
type Level int

const (
	// LevelDebug is the debug log level.
	LevelDebug Level = iota
	// LevelInfo is the info log level.
	LevelInfo
	// LevelWarn is the warning log level.
	LevelWarn
	// LevelError is the error log level.
	LevelError
)

// Entry is a single recorded log line.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is an L that retains every message written to it. It is useful
// for asserting that diagnostics were emitted.
//
// Recorder is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ L = (*Recorder)(nil)

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns the number of recorded entries at level lvl.
func (r *Recorder) Count(lvl Level) (count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Level == lvl {
			count++
		}
	}
	return
}

// Reset discards all recorded entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

func (r *Recorder) record(lvl Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: lvl, Message: msg})
}

// Error implements L.
func (r *Recorder) Error(args ...interface{}) { r.record(LevelError, fmt.Sprint(args...)) }

// Warn implements L.
func (r *Recorder) Warn(args ...interface{}) { r.record(LevelWarn, fmt.Sprint(args...)) }

// Info implements L.
func (r *Recorder) Info(args ...interface{}) { r.record(LevelInfo, fmt.Sprint(args...)) }

// Debug implements L.
func (r *Recorder) Debug(args ...interface{}) { r.record(LevelDebug, fmt.Sprint(args...)) }

// Errorf implements L.
func (r *Recorder) Errorf(f string, args ...interface{}) {
	r.record(LevelError, fmt.Sprintf(f, args...))
}

// Warnf implements L.
func (r *Recorder) Warnf(f string, args ...interface{}) { r.record(LevelWarn, fmt.Sprintf(f, args...)) }

// Infof implements L.
func (r *Recorder) Infof(f string, args ...interface{}) { r.record(LevelInfo, fmt.Sprintf(f, args...)) }

// Debugf implements L.
func (r *Recorder) Debugf(f string, args ...interface{}) {
	r.record(LevelDebug, fmt.Sprintf(f, args...))
}
