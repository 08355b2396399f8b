// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package controller

import (
	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/pixel"
)

// MaxInstances is the maximum number of concurrently playing animations.
const MaxInstances = 20

// AnyFace matches an instance playing on any face.
const AnyFace = -1

// instance is a playing animation.
type instance struct {
	anim    *anim.Animation
	start   int
	face    int
	loop    bool
	special specialColor

	// res resolves colours for special colour variants that depend on global
	// state.
	res *resolver
}

var _ anim.ColorSource = (*instance)(nil)

// Color implements anim.ColorSource.
func (inst *instance) Color(slot int) pixel.P { return inst.special.resolve(inst.res, slot) }

// pool is a fixed-capacity, contiguous sequence of instances.
//
// Removal shifts every later instance down by one, preserving order.
type pool struct {
	instances [MaxInstances]instance
	count     int
}

func (p *pool) len() int { return p.count }

func (p *pool) at(i int) *instance { return &p.instances[i] }

// find returns the index of the first instance of a playing on face, or -1.
// face may be AnyFace.
func (p *pool) find(a *anim.Animation, face int) int {
	for i := 0; i < p.count; i++ {
		inst := &p.instances[i]
		if inst.anim == a && (face == AnyFace || inst.face == face) {
			return i
		}
	}
	return -1
}

// add appends inst. If the pool is full, add returns false.
func (p *pool) add(inst instance) bool {
	if p.count >= len(p.instances) {
		return false
	}
	p.instances[p.count] = inst
	p.count++
	return true
}

// remove deletes the instance at i, shifting later instances down.
func (p *pool) remove(i int) {
	copy(p.instances[i:p.count], p.instances[i+1:p.count])
	p.count--
	p.instances[p.count] = instance{}
}

func (p *pool) clear() {
	for i := 0; i < p.count; i++ {
		p.instances[i] = instance{}
	}
	p.count = 0
}
