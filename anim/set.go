// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anim

import (
	"github.com/danjacques/pixeldie/pixel"

	"github.com/pkg/errors"
)

// Set is a loaded, immutable collection of animations sharing one palette.
//
// A Set must outlive every animation instance that references one of its
// animations.
type Set struct {
	// Palette is the set of static colours addressable by keyframes.
	Palette []pixel.P
	// Animations is the set's animations, addressed by index.
	Animations []*Animation
	// HeatTrack, if not nil, maps heat (scaled onto its duration) to a colour.
	HeatTrack *Track
}

// Validate checks that every animation in s is well-formed for a board with
// ledCount LEDs.
//
// Palette slots beyond the palette are permitted, since they are resolved to
// black (or to a special colour) at evaluation time.
func (s *Set) Validate(ledCount int) error {
	for i, a := range s.Animations {
		if a == nil {
			return errors.Errorf("animation %d is nil", i)
		}
		if err := a.Validate(ledCount); err != nil {
			return errors.Wrapf(err, "animation %d (%s)", i, a)
		}
	}
	if s.HeatTrack != nil {
		if err := validateTrack(s.HeatTrack, ledCount); err != nil {
			return errors.Wrap(err, "heat track")
		}
	}
	return nil
}

// Count returns the number of animations in s.
func (s *Set) Count() int { return len(s.Animations) }

// Animation returns the animation at index i. If i is out of range,
// Animation returns false.
func (s *Set) Animation(i int) (*Animation, bool) {
	if i < 0 || i >= len(s.Animations) {
		return nil, false
	}
	return s.Animations[i], true
}

// IndexOf returns the index of a in s, or -1 if a is not part of s.
func (s *Set) IndexOf(a *Animation) int {
	for i, sa := range s.Animations {
		if sa == a {
			return i
		}
	}
	return -1
}

// PaletteColor returns the palette colour at slot. If slot is out of range,
// PaletteColor returns black and false.
func (s *Set) PaletteColor(slot int) (pixel.P, bool) {
	if slot < 0 || slot >= len(s.Palette) {
		return pixel.Black, false
	}
	return s.Palette[slot], true
}

// Color implements ColorSource using plain palette lookups.
func (s *Set) Color(slot int) pixel.P {
	p, _ := s.PaletteColor(slot)
	return p
}

// HeatColor evaluates the heat track at heat (in [0, 1]) scaled onto the
// track's duration. If the set has no heat track, HeatColor returns black.
func (s *Set) HeatColor(heat float64) pixel.P {
	if s.HeatTrack == nil {
		return pixel.Black
	}
	return s.HeatTrack.Evaluate(int(heat*float64(s.HeatTrack.Duration())), s)
}

// EventTable maps each Event to the index of the animation that plays for
// it. Events with no animation map to -1.
type EventTable [EventCount]int

// BuildEventTable builds s's EventTable. If several animations name the same
// event, the last one wins.
func (s *Set) BuildEventTable() (et EventTable) {
	for i := range et {
		et[i] = -1
	}
	for i, a := range s.Animations {
		if a.Event > EventNone && a.Event < EventCount {
			et[a.Event] = i
		}
	}
	return
}

// Lookup returns the animation index for evt, or -1.
func (et *EventTable) Lookup(evt Event) int {
	if evt >= EventCount {
		return -1
	}
	return et[evt]
}
