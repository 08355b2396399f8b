// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"github.com/danjacques/pixeldie/pixel"
)

// 101 110 011 100 010 001
const cyclerMask = uint(0x2E711)

// cycler generates the LED colour test: each channel combination in
// cyclerMask fades up to full intensity and back down, in turn.
type cycler struct {
	// Step is the intensity change per call. If zero, 1 is used.
	Step int

	v    int
	mask uint
}

func (c *cycler) Next() (p pixel.P) {
	if c.mask == 0 {
		c.mask = cyclerMask
	}

	// Select our intensity. >0xFF fades downwards towards 0.
	v := c.v
	if v > 0xFF {
		v = 0x1FF - v
	}

	// Set masked colors.
	if c.mask&0x01 != 0 {
		p.Red = byte(v)
	}
	if c.mask&0x02 != 0 {
		p.Green = byte(v)
	}
	if c.mask&0x04 != 0 {
		p.Blue = byte(v)
	}

	// Cycle.
	step := c.Step
	if step <= 0 {
		step = 1
	}
	c.v += step
	if c.v > 0x1FF {
		c.v = 0
		c.mask >>= 3
	}
	return
}

// breather pulses Color along the sine table.
type breather struct {
	Color pixel.P
	// Step is the phase advance per call. If zero, 1 is used.
	Step uint8

	phase uint8
}

func (b *breather) Next() pixel.P {
	level := uint16(pixel.Sine8(b.phase))

	step := b.Step
	if step == 0 {
		step = 1
	}
	b.phase += step

	scale := func(v uint8) uint8 { return uint8(uint16(v) * level / 0xFF) }
	return pixel.P{
		Red:   scale(b.Color.Red),
		Green: scale(b.Color.Green),
		Blue:  scale(b.Color.Blue),
	}
}
