// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package message

import (
	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/controller"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/support/logging"
)

// Player plays animations. It is satisfied by *controller.Controller.
type Player interface {
	Play(index, face int, loop bool)
	PlayEvent(evt anim.Event, face int, loop bool)
	Stop(index, face int)
	Fill(p pixel.P)
}

// VoltageSource reads the battery voltage. It is satisfied by
// *battery.Controller.
type VoltageSource interface {
	Voltage() (float64, error)
}

// MotionSource reports the die's motion state. It is satisfied by
// *motion.Tracker.
type MotionSource interface {
	State() motion.State
	CurrentFace() int
}

var (
	_ Player       = (*controller.Controller)(nil)
	_ MotionSource = (*motion.Tracker)(nil)
)

// Dispatcher routes received messages to the die's subsystems and builds
// their replies.
//
// Dispatcher's fields must not be changed while it is in use. Any nil
// subsystem causes its messages to be ignored.
type Dispatcher struct {
	// ID is the die's identifier, sent in IAmADie.
	ID uint8

	// Player receives animation requests.
	Player Player
	// Battery answers RequestBatteryLevel.
	Battery VoltageSource
	// Motion answers RequestState, and resolves AnyFace in play requests to
	// the current face.
	Motion MotionSource

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L
}

// Handle applies msg and returns its reply, or nil if msg has no reply.
func (d *Dispatcher) Handle(msg Message) Message {
	logger := logging.Must(d.Logger)

	switch m := msg.(type) {
	case *WhoAreYou:
		return &IAmADie{ID: d.ID}

	case *RequestState:
		if d.Motion == nil {
			break
		}
		return &DieState{
			State: uint8(d.Motion.State()),
			Face:  faceByte(d.Motion.CurrentFace()),
		}

	case *RequestBatteryLevel:
		if d.Battery == nil {
			break
		}
		v, err := d.Battery.Voltage()
		if err != nil {
			logger.Warnf("Could not read battery level: %s", err)
			return nil
		}
		return &BatteryLevel{Level: float32(v)}

	case *PlayAnim:
		if d.Player == nil {
			break
		}
		logger.Debugf("Playing animation %d on face %d (loop=%d).", m.Animation, m.RemapFace, m.Loop)
		d.Player.Play(int(m.Animation), d.playFace(m.RemapFace), m.Loop != 0)
		return nil

	case *PlayAnimEvent:
		if d.Player == nil {
			break
		}
		d.Player.PlayEvent(anim.Event(m.Event), d.playFace(m.RemapFace), m.Loop != 0)
		return nil

	case *StopAnim:
		if d.Player == nil {
			break
		}
		face := int(m.RemapFace)
		if m.RemapFace == AnyFace {
			face = controller.AnyFace
		}
		d.Player.Stop(int(m.Animation), face)
		return nil

	case *SetAllLEDsToColor:
		if d.Player == nil {
			break
		}
		d.Player.Fill(pixel.FromPacked(m.Color))
		return nil

	case *DebugLog:
		logger.Infof("Remote: %s", m.Text)
		return nil
	}

	logger.Debugf("Ignoring %s message.", msg.Type())
	return nil
}

func (d *Dispatcher) playFace(face uint8) int {
	if face != AnyFace {
		return int(face)
	}
	if d.Motion != nil {
		if f := d.Motion.CurrentFace(); f >= 0 {
			return f
		}
	}
	return 0
}

func faceByte(face int) uint8 {
	if face < 0 || face >= AnyFace {
		return AnyFace
	}
	return uint8(face)
}
