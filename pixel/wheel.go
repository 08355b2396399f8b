// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixel

// Wheel maps a position on a 256-step colour wheel to a fully-saturated
// colour. The wheel passes red (0) → green (85) → blue (170) → red.
func Wheel(pos uint8) P {
	pos = 0xFF - pos
	switch {
	case pos < 85:
		return P{Red: 0xFF - pos*3, Blue: pos * 3}
	case pos < 170:
		pos -= 85
		return P{Green: pos * 3, Blue: 0xFF - pos*3}
	default:
		pos -= 170
		return P{Red: pos * 3, Green: 0xFF - pos*3}
	}
}

// FaceWheel returns a colour for face, spreading count faces evenly around
// the colour wheel.
//
// If count is not positive, FaceWheel returns Wheel(0).
func FaceWheel(face, count int) P {
	if count <= 0 {
		return Wheel(0)
	}
	pos := ((face % count) * 256) / count
	if pos < 0 {
		pos += 256
	}
	return Wheel(uint8(pos))
}
