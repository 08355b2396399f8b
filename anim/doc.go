// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package anim defines LED animations: keyframed colour tracks bound to
// canonical LED positions, grouped into an immutable Set with a shared
// colour palette.
//
// Animations are authored for face 0. The controller package rotates their
// canonical LED indices onto other faces at playback time.
//
// Track colours are named by palette slot. Evaluation asks a ColorSource to
// turn a slot into a concrete colour, which lets animations with a special
// colour type substitute a dynamic colour (face hue, rainbow, heat) for the
// palette entry.
package anim
