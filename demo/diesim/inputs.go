// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/support/vecmath"
)

// tiltAmount is the sideways component added to gravity while tilted. It
// pushes the reading below motion.OnFaceAlignment.
const tiltAmount = 0.4

// accelerometer synthesizes accelerometer readings for a die resting on a
// chosen face, tilted, or tumbling.
//
// accelerometer is safe for concurrent use.
type accelerometer struct {
	board *board.Board

	mu        sync.Mutex
	rand      *rand.Rand
	face      int
	tilted    bool
	rolling   bool
	rollUntil time.Duration
	last      time.Duration
}

func newAccelerometer(b *board.Board, seed int64) *accelerometer {
	return &accelerometer{
		board: b,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// Face returns the face the die will come to rest on.
func (a *accelerometer) Face() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.face
}

// SetFace places the die on face, wrapping out-of-range values.
func (a *accelerometer) SetFace(face int) {
	n := a.board.FaceCount()
	face %= n
	if face < 0 {
		face += n
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.face, a.tilted = face, false
}

// ToggleTilt tilts or levels the die.
func (a *accelerometer) ToggleTilt() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tilted = !a.tilted
	return a.tilted
}

// Roll tumbles the die for d, starting at the most recent sample. It lands
// on a random face.
func (a *accelerometer) Roll(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rolling, a.rollUntil, a.tilted = true, a.last+d, false
}

// Rolling returns true while a roll is in progress.
func (a *accelerometer) Rolling() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rolling
}

// Sample returns the reading at time at, in g.
func (a *accelerometer) Sample(at time.Duration) vecmath.Vec3 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = at

	if a.rolling {
		if at < a.rollUntil {
			face := a.rand.Intn(a.board.FaceCount())
			return a.board.FaceNormal(face).Scale(0.5 + a.rand.Float64())
		}
		a.rolling = false
		a.face = a.rand.Intn(a.board.FaceCount())
	}

	n := a.board.FaceNormal(a.face)
	if a.tilted {
		return n.Add(n.Perpendicular().Scale(tiltAmount))
	}
	return n
}

// cell is a simulated battery cell. It drains slowly on every reading, and
// rises while a charger is attached.
//
// cell is safe for concurrent use.
type cell struct {
	mu       sync.Mutex
	volts    float64
	charging bool
}

const (
	cellMin       = 2.5
	cellMax       = 4.2
	cellDrain     = 0.0005
	cellChargeInc = 0.05
)

// Voltage takes a reading. It satisfies battery.SensorFunc.
func (c *cell) Voltage() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.charging {
		c.volts += cellChargeInc
	} else {
		c.volts -= cellDrain
	}
	c.volts = clampVolts(c.volts)
	return c.volts, nil
}

// Adjust changes the cell's voltage by dv.
func (c *cell) Adjust(dv float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volts = clampVolts(c.volts + dv)
}

// ToggleCharger attaches or detaches the charger, returning true if it is
// now attached.
func (c *cell) ToggleCharger() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charging = !c.charging
	return c.charging
}

// Snapshot returns the cell's voltage and charger state without taking a
// reading.
func (c *cell) Snapshot() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volts, c.charging
}

func clampVolts(v float64) float64 {
	switch {
	case v < cellMin:
		return cellMin
	case v > cellMax:
		return cellMax
	default:
		return v
	}
}
