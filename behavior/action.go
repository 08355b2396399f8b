// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package behavior

import (
	"fmt"

	"github.com/danjacques/pixeldie/message"
)

// CurrentFace is a PlayAnimation face that resolves to the face the die is
// resting on when the action runs.
const CurrentFace = -1

// Action is something a rule does when it fires.
//
// The set of actions is closed; Action is implemented only by this package.
type Action interface {
	fmt.Stringer

	run(e *Executor)
}

// PlayAnimation plays an animation from the die's animation set, once.
type PlayAnimation struct {
	// Index is the animation's index in the set.
	Index int
	// Face is the face to orient the animation to, or CurrentFace.
	Face int
}

func (a *PlayAnimation) String() string {
	if a.Face == CurrentFace {
		return fmt.Sprintf("PlayAnimation{%d on current face}", a.Index)
	}
	return fmt.Sprintf("PlayAnimation{%d on face %d}", a.Index, a.Face)
}

func (a *PlayAnimation) run(e *Executor) {
	if e.Player == nil {
		return
	}
	if a.Index < 0 || (e.Animations != nil && a.Index >= e.Animations.Count()) {
		e.log().Errorf("Invalid animation index %d", a.Index)
		return
	}

	face := a.Face
	if face == CurrentFace {
		face = e.currentFace()
	}
	e.log().Infof("Playing anim %d on face %d", a.Index, face)
	e.Player.Play(a.Index, face, false)
}

// PlaySound asks the connected app to play a sound clip. If no app is
// connected, the action is ignored.
type PlaySound struct {
	// ClipID identifies the clip to the app.
	ClipID uint32
}

func (a *PlaySound) String() string { return fmt.Sprintf("PlaySound{%08x}", a.ClipID) }

func (a *PlaySound) run(e *Executor) {
	if e.Link == nil || !e.Link.Connected() {
		e.log().Infof("(Ignored) Playing sound %08x", a.ClipID)
		return
	}

	e.log().Infof("Playing sound %08x", a.ClipID)
	if err := e.Link.Send(&message.PlaySound{ClipID: a.ClipID}); err != nil {
		e.log().Warnf("Failed to send sound %08x: %s", a.ClipID, err)
	}
}
