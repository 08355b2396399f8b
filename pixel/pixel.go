// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package pixel defines the pixel value type, its colour lookup tables, and
// the flat wire-ordered pixel buffer used by LED strip drivers.
package pixel

import (
	"fmt"
)

// P is the state of a single RGB pixel.
type P struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Black is the zero-value (off) pixel.
var Black = P{}

func (p P) String() string { return fmt.Sprintf("(%d, %d, %d)", p.Red, p.Green, p.Blue) }

// FromPacked unpacks a 0xRRGGBB value into a P. The top byte is ignored.
func FromPacked(v uint32) P {
	return P{
		Red:   uint8(v >> 16),
		Green: uint8(v >> 8),
		Blue:  uint8(v),
	}
}

// Packed returns p as a 0xRRGGBB value.
func (p P) Packed() uint32 {
	return uint32(p.Red)<<16 | uint32(p.Green)<<8 | uint32(p.Blue)
}

// IsBlack returns true if every channel of p is zero.
func (p P) IsBlack() bool { return p == Black }

// Gamma returns a new P with each channel passed through the gamma
// correction table.
func (p P) Gamma() P {
	return P{
		Red:   gammaTable[p.Red],
		Green: gammaTable[p.Green],
		Blue:  gammaTable[p.Blue],
	}
}

// Add returns the per-channel sum of p and o, saturating at 0xFF.
func (p P) Add(o P) P {
	return P{
		Red:   addSaturate(p.Red, o.Red),
		Green: addSaturate(p.Green, o.Green),
		Blue:  addSaturate(p.Blue, o.Blue),
	}
}

func addSaturate(a, b uint8) uint8 {
	if s := uint16(a) + uint16(b); s < 0xFF {
		return uint8(s)
	}
	return 0xFF
}

// Interpolate linearly interpolates between a (at time t1) and b (at time t2)
// for time t. t is expected to lie within [t1, t2]; if t1 == t2, b is
// returned.
func Interpolate(a P, t1 int, b P, t2 int, t int) P {
	span := t2 - t1
	if span <= 0 {
		return b
	}
	lerp := func(x, y uint8) uint8 {
		return uint8((int(x)*(t2-t) + int(y)*(t-t1)) / span)
	}
	return P{
		Red:   lerp(a.Red, b.Red),
		Green: lerp(a.Green, b.Green),
		Blue:  lerp(a.Blue, b.Blue),
	}
}
