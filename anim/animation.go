// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anim

import (
	"fmt"
	"strings"

	"github.com/danjacques/pixeldie/pixel"

	"github.com/pkg/errors"
)

// SpecialColor selects how an animation's track colours are resolved.
type SpecialColor uint8

const (
	// SpecialColorNone uses plain palette colours.
	SpecialColorNone SpecialColor = iota
	// SpecialColorFace uses a hue derived from the face the animation plays on.
	SpecialColorFace
	// SpecialColorColorWheel uses a hue that rotates as the die is shaken.
	SpecialColorColorWheel
	// SpecialColorHeatCurrent tracks the current heat value continuously.
	SpecialColorHeatCurrent
	// SpecialColorHeatStart uses the heat colour at the moment the animation
	// started.
	SpecialColorHeatStart
)

var specialColorNames = []string{
	SpecialColorNone:        "none",
	SpecialColorFace:        "face",
	SpecialColorColorWheel:  "color_wheel",
	SpecialColorHeatCurrent: "heat_current",
	SpecialColorHeatStart:   "heat_start",
}

func (sc SpecialColor) String() string {
	if int(sc) < len(specialColorNames) {
		return specialColorNames[sc]
	}
	return fmt.Sprintf("SpecialColor(%d)", uint8(sc))
}

// ParseSpecialColor parses a special colour name. The empty string is
// SpecialColorNone.
func ParseSpecialColor(v string) (SpecialColor, error) {
	if v == "" {
		return SpecialColorNone, nil
	}
	v = strings.ToLower(v)
	for i, name := range specialColorNames {
		if name == v {
			return SpecialColor(i), nil
		}
	}
	return 0, errors.Errorf("unknown special color %q", v)
}

// LEDColor is a colour destined for a canonical LED index.
type LEDColor struct {
	Index int
	Color pixel.P
}

// Animation is an immutable animation definition.
type Animation struct {
	// Name is a human-readable name.
	Name string
	// Duration is the length of the animation, in milliseconds.
	Duration int
	// Tracks are the animation's colour tracks.
	Tracks []Track
	// SpecialColor selects how track colours are resolved.
	SpecialColor SpecialColor
	// Event, if not EventNone, is the event this animation is played for.
	Event Event
}

func (a *Animation) String() string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("Animation{%d ms, %d tracks}", a.Duration, len(a.Tracks))
}

// Evaluate appends the colour of every track at time ms to out, in track
// order, and returns the extended slice.
func (a *Animation) Evaluate(ms int, src ColorSource, out []LEDColor) []LEDColor {
	for i := range a.Tracks {
		t := &a.Tracks[i]
		out = append(out, LEDColor{Index: t.LEDIndex, Color: t.Evaluate(ms, src)})
	}
	return out
}

// LEDIndices appends the canonical LED index of every track to out and
// returns the extended slice.
func (a *Animation) LEDIndices(out []int) []int {
	for i := range a.Tracks {
		out = append(out, a.Tracks[i].LEDIndex)
	}
	return out
}

// Validate checks that a is well-formed for a board with ledCount LEDs.
func (a *Animation) Validate(ledCount int) error {
	if a.Duration <= 0 {
		return errors.Errorf("duration %d must be positive", a.Duration)
	}
	if int(a.SpecialColor) >= len(specialColorNames) {
		return errors.Errorf("unknown special color %d", a.SpecialColor)
	}
	for i := range a.Tracks {
		if err := validateTrack(&a.Tracks[i], ledCount); err != nil {
			return errors.Wrapf(err, "track %d", i)
		}
	}
	return nil
}

func validateTrack(t *Track, ledCount int) error {
	if t.LEDIndex < 0 || t.LEDIndex >= ledCount {
		return errors.Errorf("LED index %d is out of range [0, %d)", t.LEDIndex, ledCount)
	}
	for i := range t.Keyframes {
		kf := &t.Keyframes[i]
		switch {
		case kf.Time < 0:
			return errors.Errorf("keyframe %d has negative time %d", i, kf.Time)
		case kf.ColorIndex < 0:
			return errors.Errorf("keyframe %d has negative color index %d", i, kf.ColorIndex)
		case i > 0 && kf.Time < t.Keyframes[i-1].Time:
			return errors.Errorf("keyframe %d at %d ms precedes keyframe %d", i, kf.Time, i-1)
		}
	}
	return nil
}
