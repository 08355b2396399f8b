// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package behavior

import (
	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/support/logging"
)

// Player plays animations. It is satisfied by *controller.Controller.
type Player interface {
	Play(index, face int, loop bool)
	PlayEvent(evt anim.Event, face int, loop bool)
}

// Counter reports the number of animations available. It is satisfied by
// *anim.Set.
type Counter interface {
	Count() int
}

// FaceSource reports the face the die rests on, or -1 if unknown. It is
// satisfied by *motion.Tracker.
type FaceSource interface {
	CurrentFace() int
}

// Link sends messages to a connected app. It is satisfied by *message.Link.
type Link interface {
	Connected() bool
	Send(msg message.Message) error
}

var (
	_ Counter = (*anim.Set)(nil)
	_ Link    = (*message.Link)(nil)
)

// Executor runs actions against the die's subsystems.
//
// An Executor's fields must not be changed while it is in use. A nil
// subsystem disables the actions that need it.
type Executor struct {
	Player     Player
	Animations Counter
	Faces      FaceSource
	Link       Link

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L
}

// Run runs actions in order.
//
// Run is safe for concurrent use if the Executor's subsystems are.
func (e *Executor) Run(actions ...Action) {
	for _, a := range actions {
		a.run(e)
	}
}

func (e *Executor) log() logging.L { return logging.Must(e.Logger) }

func (e *Executor) currentFace() int {
	if e.Faces == nil {
		return 0
	}
	if f := e.Faces.CurrentFace(); f >= 0 {
		return f
	}
	return 0
}
