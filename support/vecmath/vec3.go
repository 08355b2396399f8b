// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package vecmath contains the small amount of 3D vector math needed for
// face orientation and motion processing.
package vecmath

import (
	"fmt"
	"math"
)

// Vec3 is a three-component vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) String() string { return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z) }

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v×o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// SqrMagnitude returns |v|².
func (v Vec3) SqrMagnitude() float64 { return v.Dot(v) }

// Magnitude returns |v|.
func (v Vec3) Magnitude() float64 { return math.Sqrt(v.SqrMagnitude()) }

// Normalized returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalized() Vec3 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.Scale(1 / m)
}

// Perpendicular returns a unit vector perpendicular to v.
func (v Vec3) Perpendicular() Vec3 {
	// Cross with whichever basis axis is least aligned with v.
	var axis Vec3
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax <= ay && ax <= az:
		axis = Vec3{X: 1}
	case ay <= az:
		axis = Vec3{Y: 1}
	default:
		axis = Vec3{Z: 1}
	}
	return v.Cross(axis).Normalized()
}

// Rotation is a rotation described by a unit axis and an angle in radians.
type Rotation struct {
	Axis  Vec3
	Angle float64
}

// RotationBetween returns the smallest rotation that carries unit vector
// from onto unit vector to. Antiparallel vectors rotate by π around an
// arbitrary perpendicular axis.
func RotationBetween(from, to Vec3) Rotation {
	from, to = from.Normalized(), to.Normalized()
	cos := from.Dot(to)
	switch {
	case cos > 1-1e-9:
		return Rotation{Axis: Vec3{Z: 1}}
	case cos < -1+1e-9:
		return Rotation{Axis: from.Perpendicular(), Angle: math.Pi}
	}
	return Rotation{
		Axis:  from.Cross(to).Normalized(),
		Angle: math.Acos(cos),
	}
}

// Apply rotates v by r using Rodrigues' formula.
func (r Rotation) Apply(v Vec3) Vec3 {
	if r.Angle == 0 {
		return v
	}
	k := r.Axis
	sin, cos := math.Sincos(r.Angle)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}
