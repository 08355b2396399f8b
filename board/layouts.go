// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package board

import (
	"math"
	"strings"

	"github.com/danjacques/pixeldie/support/vecmath"

	"github.com/pkg/errors"
)

// phi is the golden ratio.
var phi = (1 + math.Sqrt(5)) / 2

// d20FaceToLED is the face to LED wiring of the D20 board.
var d20FaceToLED = []int{
	9, 14, 5, 0, 17, 12, 3, 19, 7, 1,
	18, 11, 4, 16, 8, 2, 13, 6, 15, 10,
}

// d20Normals returns the face normals of an icosahedron, ordered so that
// opposite faces i and 19-i have opposite normals.
func d20Normals() []vecmath.Vec3 {
	ip := 1 / phi
	half := []vecmath.Vec3{
		{X: 0, Y: ip, Z: phi},
		{X: 1, Y: 1, Z: 1},
		{X: -1, Y: 1, Z: 1},
		{X: phi, Y: 0, Z: ip},
		{X: -phi, Y: 0, Z: ip},
		{X: ip, Y: phi, Z: 0},
		{X: -ip, Y: phi, Z: 0},
		{X: 1, Y: -1, Z: 1},
		{X: -1, Y: -1, Z: 1},
		{X: 0, Y: -ip, Z: phi},
	}
	normals := make([]vecmath.Vec3, 20)
	for i, v := range half {
		normals[i] = v
		normals[19-i] = v.Neg()
	}
	return normals
}

// DefaultD20 returns the standard 20-face die board.
func DefaultD20() *Board {
	return mustNew(New("D20", Pins{Data: "GPIO10", Clock: "GPIO11", Power: "GPIO25"},
		d20FaceToLED, d20Normals()))
}

// D6 returns a six-face die board with LEDs wired in face order. Opposite
// faces i and 5-i have opposite normals.
func D6() *Board {
	return mustNew(New("D6", Pins{Data: "GPIO10", Clock: "GPIO11", Power: "GPIO25"},
		[]int{0, 1, 2, 3, 4, 5},
		[]vecmath.Vec3{
			{Z: 1},
			{X: 1},
			{Y: 1},
			{Y: -1},
			{X: -1},
			{Z: -1},
		}))
}

// Named returns the built-in board called name ("d20" or "d6", case
// insensitive).
func Named(name string) (*Board, error) {
	switch strings.ToLower(name) {
	case "d20":
		return DefaultD20(), nil
	case "d6":
		return D6(), nil
	default:
		return nil, errors.Errorf("unknown board %q", name)
	}
}

func mustNew(b *Board, err error) *Board {
	if err != nil {
		panic(err)
	}
	return b
}
