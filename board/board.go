// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package board describes the physical layout of a die: how many LEDs it
// has, which LED sits under which face, and the outward normal of each face.
//
// A Board is read-only once constructed and may be shared freely.
package board

import (
	"math"

	"github.com/danjacques/pixeldie/support/vecmath"

	"github.com/pkg/errors"
)

// MaxLEDCount is the largest number of LEDs a board may have.
const MaxLEDCount = 21

// Pins names the GPIO pins used to talk to the LED strip. Names are resolved
// by the host's GPIO registry.
type Pins struct {
	Data  string
	Clock string
	Power string
}

// Board is a physical die layout.
type Board struct {
	name      string
	pins      Pins
	faceToLED []int
	normals   []vecmath.Vec3

	// remap is a LEDCount×LEDCount table. remap[f*n+c] is the face that
	// canonical face c lands on when the animation is oriented to face f.
	remap []int
}

// New builds a Board.
//
// faceToLED maps each face index to the physical LED index under that face;
// it must be a permutation of [0, len(faceToLED)). normals holds the outward
// normal of each face and must be the same length.
func New(name string, pins Pins, faceToLED []int, normals []vecmath.Vec3) (*Board, error) {
	n := len(faceToLED)
	switch {
	case n == 0:
		return nil, errors.New("board has no LEDs")
	case n > MaxLEDCount:
		return nil, errors.Errorf("board has %d LEDs, more than the maximum of %d", n, MaxLEDCount)
	case len(normals) != n:
		return nil, errors.Errorf("board has %d LEDs but %d face normals", n, len(normals))
	}

	seen := make([]bool, n)
	for face, led := range faceToLED {
		if led < 0 || led >= n {
			return nil, errors.Errorf("face %d maps to out-of-range LED %d", face, led)
		}
		if seen[led] {
			return nil, errors.Errorf("LED %d is mapped to more than one face", led)
		}
		seen[led] = true
	}

	b := Board{
		name:      name,
		pins:      pins,
		faceToLED: append([]int(nil), faceToLED...),
		normals:   make([]vecmath.Vec3, n),
	}
	for i, v := range normals {
		if v.SqrMagnitude() == 0 {
			return nil, errors.Errorf("face %d has a zero normal", i)
		}
		b.normals[i] = v.Normalized()
	}
	b.buildRemapTable()
	return &b, nil
}

func (b *Board) String() string { return b.name }

// Name returns the board's name.
func (b *Board) Name() string { return b.name }

// Pins returns the board's LED strip pin names.
func (b *Board) Pins() Pins { return b.pins }

// LEDCount returns the number of LEDs (and faces) on the board.
func (b *Board) LEDCount() int { return len(b.faceToLED) }

// FaceCount returns the number of faces on the board.
func (b *Board) FaceCount() int { return len(b.normals) }

// LEDForFace returns the physical LED index under face. If face is out of
// range, LEDForFace returns -1.
func (b *Board) LEDForFace(face int) int {
	if face < 0 || face >= len(b.faceToLED) {
		return -1
	}
	return b.faceToLED[face]
}

// FaceNormal returns the unit normal of face, or the zero vector if face is
// out of range.
func (b *Board) FaceNormal(face int) vecmath.Vec3 {
	if face < 0 || face >= len(b.normals) {
		return vecmath.Vec3{}
	}
	return b.normals[face]
}

// RemapFace rotates canonical face index canon so that an animation
// authored for face 0 plays oriented to remapFace.
//
// If either index is out of range, RemapFace returns -1.
func (b *Board) RemapFace(remapFace, canon int) int {
	n := len(b.normals)
	if remapFace < 0 || remapFace >= n || canon < 0 || canon >= n {
		return -1
	}
	return b.remap[remapFace*n+canon]
}

// ClosestFace returns the face whose normal is best aligned with v.
func (b *Board) ClosestFace(v vecmath.Vec3) int {
	best, bestDot := 0, math.Inf(-1)
	for i, n := range b.normals {
		if d := n.Dot(v); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best
}

func (b *Board) buildRemapTable() {
	n := len(b.normals)
	b.remap = make([]int, n*n)
	for f := 0; f < n; f++ {
		rot := b.orientationFor(f)
		for c := 0; c < n; c++ {
			b.remap[f*n+c] = b.ClosestFace(rot(b.normals[c]))
		}
	}
}

// orientationFor returns a rotation that carries face 0 onto face f.
//
// When the board's faces are symmetric, the rotation is chosen from the
// board's symmetry group so that the remap is a permutation: face 0 and its
// nearest neighbour are carried onto face f and one of f's neighbours at the
// same angle, picking the neighbour that best agrees with the smallest
// rotation from face 0 to face f.
func (b *Board) orientationFor(f int) func(vecmath.Vec3) vecmath.Vec3 {
	minimal := vecmath.RotationBetween(b.normals[0], b.normals[f])
	if len(b.normals) < 2 {
		return minimal.Apply
	}

	a := b.normals[0]
	ref := b.nearestNeighbour(0)
	if ref < 0 {
		return minimal.Apply
	}
	refCos := a.Dot(b.normals[ref])
	want := minimal.Apply(b.normals[ref])

	var best func(vecmath.Vec3) vecmath.Vec3
	bestDot := math.Inf(-1)
	for g, ng := range b.normals {
		if g == f || math.Abs(b.normals[f].Dot(ng)-refCos) > 1e-3 {
			continue
		}
		if d := ng.Dot(want); d > bestDot {
			best, bestDot = frameMap(a, b.normals[ref], b.normals[f], ng), d
		}
	}
	if best == nil {
		return minimal.Apply
	}
	return best
}

func (b *Board) nearestNeighbour(face int) int {
	best, bestDot := -1, math.Inf(-1)
	for i, n := range b.normals {
		if i == face {
			continue
		}
		if d := n.Dot(b.normals[face]); d > bestDot && d < 1-1e-6 {
			best, bestDot = i, d
		}
	}
	return best
}

// frameMap returns the rotation carrying the orthonormal frame built from
// (srcA, srcB) onto the frame built from (dstA, dstB).
func frameMap(srcA, srcB, dstA, dstB vecmath.Vec3) func(vecmath.Vec3) vecmath.Vec3 {
	s1, s2, s3 := frame(srcA, srcB)
	d1, d2, d3 := frame(dstA, dstB)
	return func(v vecmath.Vec3) vecmath.Vec3 {
		return d1.Scale(v.Dot(s1)).Add(d2.Scale(v.Dot(s2))).Add(d3.Scale(v.Dot(s3)))
	}
}

func frame(a, b vecmath.Vec3) (e1, e2, e3 vecmath.Vec3) {
	e1 = a.Normalized()
	e2 = b.Sub(e1.Scale(b.Dot(e1))).Normalized()
	e3 = e1.Cross(e2)
	return
}
