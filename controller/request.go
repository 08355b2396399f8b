// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package controller

import (
	"fmt"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/pixel"
)

type requestKind uint8

const (
	requestPlay requestKind = iota
	requestPlayEvent
	requestStop
	requestStopAll
	requestFill
)

// request is a queued pool or strip operation.
type request struct {
	kind  requestKind
	index int
	event anim.Event
	face  int
	loop  bool
	color pixel.P
}

func (req *request) String() string {
	switch req.kind {
	case requestPlay:
		return fmt.Sprintf("play(%d, face=%d, loop=%v)", req.index, req.face, req.loop)
	case requestPlayEvent:
		return fmt.Sprintf("play(event=%s, face=%d, loop=%v)", req.event, req.face, req.loop)
	case requestStop:
		return fmt.Sprintf("stop(%d, face=%d)", req.index, req.face)
	case requestStopAll:
		return "stopAll()"
	case requestFill:
		return fmt.Sprintf("fill%s", req.color)
	default:
		return fmt.Sprintf("request(%d)", req.kind)
	}
}
