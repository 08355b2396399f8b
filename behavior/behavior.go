// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package behavior turns die events into actions.
//
// Motion, battery and connection changes are translated into anim.Events.
// Each event runs the actions of every Rule that matches it. If no rule
// matches, the animation registered for the event in the animation set is
// played instead.
package behavior

import (
	"sync"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/battery"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/support/logging"
)

// AnyFace matches every face in a Rule.
const AnyFace = -1

// Rule runs Actions when Event occurs.
type Rule struct {
	// Event is the event that fires the rule.
	Event anim.Event
	// Face, for EventOnFace, restricts the rule to a single face. AnyFace
	// matches every face.
	Face int
	// Actions are run in order when the rule fires.
	Actions []Action
}

func (r *Rule) matches(evt anim.Event, face int) bool {
	if r.Event != evt {
		return false
	}
	return r.Face == AnyFace || evt != anim.EventOnFace || r.Face == face
}

// Behavior dispatches die events to rules.
//
// Behavior's exported fields must not be changed after its first event.
// Its methods are safe for concurrent use.
type Behavior struct {
	// Executor runs rule actions. Its Player also receives fallback event
	// animations.
	Executor Executor

	// Rules are evaluated in order for every event.
	Rules []Rule

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	mu          sync.Mutex
	lastBattery battery.State
}

var (
	_ motion.StateHandler = (*Behavior)(nil).OnMotionState
	_ battery.Handler     = (*Behavior)(nil).OnBatteryState
)

// Fire runs the rules for evt, which occurred on face.
func (b *Behavior) Fire(evt anim.Event, face int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fireLocked(evt, face)
}

func (b *Behavior) fireLocked(evt anim.Event, face int) {
	logger := logging.Must(b.Logger)
	logger.Debugf("Event %s on face %d.", evt, face)

	matched := false
	for i := range b.Rules {
		r := &b.Rules[i]
		if !r.matches(evt, face) {
			continue
		}
		matched = true
		b.Executor.Run(r.Actions...)
	}

	if !matched && b.Executor.Player != nil {
		if face < 0 {
			face = b.Executor.currentFace()
		}
		b.Executor.Player.PlayEvent(evt, face, false)
	}
}

// Hello fires EventHello. It should be called once at startup.
func (b *Behavior) Hello() { b.Fire(anim.EventHello, -1) }

// OnMotionState is a motion.StateHandler.
func (b *Behavior) OnMotionState(s motion.State, face int) {
	switch s {
	case motion.StateHandling:
		b.Fire(anim.EventHandling, face)
	case motion.StateRolling:
		b.Fire(anim.EventRolling, face)
	case motion.StateOnFace:
		b.Fire(anim.EventOnFace, face)
	case motion.StateCrooked:
		b.Fire(anim.EventCrooked, face)
	}
}

// OnBatteryState is a battery.Handler.
func (b *Behavior) OnBatteryState(s battery.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.lastBattery
	b.lastBattery = s

	switch {
	case s == battery.StateCharging:
		b.fireLocked(anim.EventChargingStart, -1)
	case prev == battery.StateCharging && s == battery.StateOk:
		b.fireLocked(anim.EventChargingDone, -1)
	case prev == battery.StateCharging && s == battery.StateLow:
		b.fireLocked(anim.EventChargingError, -1)
	case s == battery.StateLow:
		b.fireLocked(anim.EventLowBattery, -1)
	}
}

// OnConnection fires EventConnected or EventDisconnected.
func (b *Behavior) OnConnection(connected bool) {
	if connected {
		b.Fire(anim.EventConnected, -1)
	} else {
		b.Fire(anim.EventDisconnected, -1)
	}
}
