// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anim

import (
	"github.com/danjacques/pixeldie/pixel"
)

// ColorSource resolves a palette slot into a concrete colour.
type ColorSource interface {
	Color(slot int) pixel.P
}

// ColorSourceFunc is a ColorSource implemented by a function.
type ColorSourceFunc func(slot int) pixel.P

// Color implements ColorSource.
func (fn ColorSourceFunc) Color(slot int) pixel.P { return fn(slot) }

// Keyframe is a colour at a point in time.
type Keyframe struct {
	// Time is the offset from the start of the animation, in milliseconds.
	Time int
	// ColorIndex is the palette slot of the keyframe's colour.
	ColorIndex int
}

// Track is a sequence of keyframes driving a single canonical LED.
//
// Keyframes must be sorted by Time.
type Track struct {
	// LEDIndex is the canonical LED (face) index this track drives.
	LEDIndex int
	// Keyframes is the track's keyframe sequence.
	Keyframes []Keyframe
}

// Duration returns the time of the track's last keyframe.
func (t *Track) Duration() int {
	if len(t.Keyframes) == 0 {
		return 0
	}
	return t.Keyframes[len(t.Keyframes)-1].Time
}

// Evaluate returns the track's colour at time ms.
//
// Before the first keyframe the first keyframe's colour is held, and after the
// last keyframe the last colour is held. Between keyframes, colours are
// linearly interpolated. A track with no keyframes is black.
func (t *Track) Evaluate(ms int, src ColorSource) pixel.P {
	count := len(t.Keyframes)
	if count == 0 {
		return pixel.Black
	}

	next := 0
	for next < count && t.Keyframes[next].Time < ms {
		next++
	}

	switch next {
	case 0:
		return src.Color(t.Keyframes[0].ColorIndex)
	case count:
		return src.Color(t.Keyframes[count-1].ColorIndex)
	}

	prev, cur := &t.Keyframes[next-1], &t.Keyframes[next]
	return pixel.Interpolate(
		src.Color(prev.ColorIndex), prev.Time,
		src.Color(cur.ColorIndex), cur.Time,
		ms)
}
