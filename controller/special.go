// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package controller

import (
	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/support/logging"
)

// RainbowScale is the number of motion samples per colour wheel step.
const RainbowScale = 1

// resolver holds the global state that special colours are resolved against.
type resolver struct {
	set     *anim.Set
	logger  logging.L
	heat    float64
	rainbow int
}

func (r *resolver) paletteColor(slot int) pixel.P {
	p, ok := r.set.PaletteColor(slot)
	if !ok {
		r.logger.Debugf("Palette slot %d is out of range; using black.", slot)
	}
	return p
}

func (r *resolver) wheelPosition() uint8 {
	idx := (r.rainbow / RainbowScale) % 256
	if idx < 0 {
		idx += 256
	}
	return uint8(idx)
}

// specialColor is the per-instance colour variant, selected by the
// animation's anim.SpecialColor when the instance starts.
type specialColor interface {
	kind() anim.SpecialColor
	resolve(r *resolver, slot int) pixel.P
}

// newSpecialColor resolves the special colour payload for an animation
// starting on face.
func newSpecialColor(sc anim.SpecialColor, face, ledCount int, r *resolver) specialColor {
	switch sc {
	case anim.SpecialColorFace:
		return faceColor{pixel.FaceWheel(face, ledCount)}
	case anim.SpecialColorColorWheel:
		return colorWheel{face}
	case anim.SpecialColorHeatStart:
		return heatSnapshot{r.set.HeatColor(r.heat)}
	case anim.SpecialColorHeatCurrent:
		return heatCurrent{}
	default:
		return paletteColor{}
	}
}

// paletteColor resolves every slot through the palette.
type paletteColor struct{}

func (paletteColor) kind() anim.SpecialColor { return anim.SpecialColorNone }

func (paletteColor) resolve(r *resolver, slot int) pixel.P { return r.paletteColor(slot) }

// faceColor is a hue chosen by face, fixed at start.
type faceColor struct{ color pixel.P }

func (faceColor) kind() anim.SpecialColor { return anim.SpecialColorFace }

func (fc faceColor) resolve(*resolver, int) pixel.P { return fc.color }

// colorWheel follows the global rainbow index. The face is informational.
type colorWheel struct{ face int }

func (colorWheel) kind() anim.SpecialColor { return anim.SpecialColorColorWheel }

func (colorWheel) resolve(r *resolver, _ int) pixel.P { return pixel.Wheel(r.wheelPosition()) }

// heatSnapshot is the heat colour at the moment the instance started.
type heatSnapshot struct{ color pixel.P }

func (heatSnapshot) kind() anim.SpecialColor { return anim.SpecialColorHeatStart }

func (hs heatSnapshot) resolve(*resolver, int) pixel.P { return hs.color }

// heatCurrent follows the current heat.
type heatCurrent struct{}

func (heatCurrent) kind() anim.SpecialColor { return anim.SpecialColorHeatCurrent }

func (heatCurrent) resolve(r *resolver, _ int) pixel.P { return r.set.HeatColor(r.heat) }
