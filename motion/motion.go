// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package motion turns raw accelerometer samples into motion frames and
// tracks the die's orientation and handling state.
package motion

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/settings"
	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/vecmath"
)

const (
	// OnFaceAlignment is the minimum alignment between gravity and a face
	// normal for the die to be considered resting on that face.
	OnFaceAlignment = 0.95

	// HandlingJerk is the jerk magnitude above which the die is being handled.
	HandlingJerk = 0.5
)

// Frame is a single processed accelerometer sample.
type Frame struct {
	// Time is the sample time, relative to the start of sampling.
	Time time.Duration
	// Acc is the measured acceleration, in g.
	Acc vecmath.Vec3
	// Jerk is the change in acceleration per second, clamped in magnitude.
	Jerk vecmath.Vec3
	// Face is the face most closely aligned with Acc.
	Face int
}

// JerkMagnitude returns the magnitude of f's jerk.
func (f *Frame) JerkMagnitude() float64 { return f.Jerk.Magnitude() }

// State is the die's handling state.
type State int32

const (
	// StateUnknown is the state before any sample has been processed.
	StateUnknown State = iota
	// StateOnFace means the die is resting flat on a face.
	StateOnFace
	// StateCrooked means the die is resting, but not flat.
	StateCrooked
	// StateHandling means the die is being moved.
	StateHandling
	// StateRolling means the die has been moving vigorously for at least the
	// minimum roll time.
	StateRolling
)

var stateNames = []string{
	StateUnknown:  "unknown",
	StateOnFace:   "on_face",
	StateCrooked:  "crooked",
	StateHandling: "handling",
	StateRolling:  "rolling",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// StateHandler is called when the die's state changes.
type StateHandler func(s State, face int)

// Tracker processes accelerometer samples.
//
// Update must be called from a single goroutine. CurrentFace and State are
// safe for concurrent use.
type Tracker struct {
	// Board supplies face normals. It must not be nil.
	Board *board.Board
	// Settings supplies the jerk clamp and minimum roll time. It must not be
	// nil.
	Settings *settings.Settings

	// OnFrame, if not nil, receives every processed frame.
	OnFrame func(Frame)
	// OnState, if not nil, is called on every state change.
	OnState StateHandler

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	last      Frame
	hasLast   bool
	moveStart time.Duration
	moving    bool

	face  atomic.Int32
	state atomic.Int32
}

// CurrentFace returns the face most recently detected as facing up, or -1 if
// no sample has been processed.
func (t *Tracker) CurrentFace() int {
	if State(t.state.Load()) == StateUnknown {
		return -1
	}
	return int(t.face.Load())
}

// State returns the die's current handling state.
func (t *Tracker) State() State { return State(t.state.Load()) }

// Update processes an acceleration sample taken at time at, and returns the
// resulting frame.
func (t *Tracker) Update(at time.Duration, acc vecmath.Vec3) Frame {
	f := Frame{
		Time: at,
		Acc:  acc,
		Face: t.Board.ClosestFace(acc),
	}

	if t.hasLast {
		if dt := (at - t.last.Time).Seconds(); dt > 0 {
			f.Jerk = acc.Sub(t.last.Acc).Scale(1 / dt)
			if m, limit := f.Jerk.Magnitude(), t.Settings.JerkClamp; m > limit {
				f.Jerk = f.Jerk.Scale(limit / m)
			}
		}
	}
	t.last, t.hasLast = f, true
	t.face.Store(int32(f.Face))
	currentFaceGauge.Set(float64(f.Face))

	t.setState(t.classify(&f), f.Face)

	if t.OnFrame != nil {
		t.OnFrame(f)
	}
	return f
}

func (t *Tracker) classify(f *Frame) State {
	if f.JerkMagnitude() > HandlingJerk {
		if !t.moving {
			t.moving, t.moveStart = true, f.Time
		}
		if f.Time-t.moveStart >= t.Settings.MinRollTime {
			return StateRolling
		}
		return StateHandling
	}
	t.moving = false

	if t.Board.FaceNormal(f.Face).Dot(f.Acc.Normalized()) >= OnFaceAlignment {
		return StateOnFace
	}
	return StateCrooked
}

func (t *Tracker) setState(s State, face int) {
	prev := State(t.state.Swap(int32(s)))
	if prev == s {
		return
	}

	stateChanges.WithLabelValues(s.String()).Inc()
	logging.Must(t.Logger).Debugf("Die state %s => %s (face %d)", prev, s, face)
	if t.OnState != nil {
		t.OnState(s, face)
	}
}
