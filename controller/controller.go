// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package controller plays animations onto a die's LED strip.
//
// A Controller owns a fixed-capacity pool of playing animation instances. On
// every tick it advances each instance, retires finished ones, evaluates the
// remainder and composites their colours additively into a single frame,
// which it hands to the strip.
//
// Requests (Play, Stop, ...) and motion samples may be posted from any
// goroutine. They are queued and applied at the start of the next tick, so
// that the pool, the heat value and the rainbow index are only ever touched
// by the goroutine calling Tick.
package controller

import (
	"context"
	"math"
	"time"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/settings"
	"github.com/danjacques/pixeldie/support/logging"

	"github.com/pkg/errors"
)

const (
	// DefaultTickInterval is the tick interval used by Run if none is
	// configured.
	DefaultTickInterval = 33 * time.Millisecond

	// DefaultQueueSize is the default request queue capacity.
	DefaultQueueSize = 16

	// DefaultMotionQueueSize is the default motion queue capacity.
	DefaultMotionQueueSize = 64
)

// Strip is the LED strip that a Controller renders to.
type Strip interface {
	// Len returns the number of LEDs on the strip.
	Len() int
	// SetPixel sets a single LED. Out-of-range indices are ignored.
	SetPixel(i int, p pixel.P)
	// SetPixels sets LEDs starting at index 0.
	SetPixels(pixels []pixel.P)
	// Clear turns every LED off.
	Clear()
	// Show sends the current colours to the strip.
	Show() error
}

// InstanceStatus describes a playing animation instance.
type InstanceStatus struct {
	// Animation is the animation being played.
	Animation *anim.Animation
	// Face is the face the animation is oriented to.
	Face int
	// Start is the instance's start time, in milliseconds.
	Start int
	// Loop is true if the instance restarts when it finishes.
	Loop bool
	// SpecialColor is the instance's special colour type.
	SpecialColor anim.SpecialColor
}

// Controller plays animations.
//
// Exported fields must be set before Initialize is called, and must not be
// changed afterwards. A Controller must not be copied after Initialize.
type Controller struct {
	// Set is the animation set to play from. It must not be nil.
	Set *anim.Set
	// Board describes the die. It must not be nil.
	Board *board.Board
	// Settings supplies heat rates. It must not be nil.
	Settings *settings.Settings
	// Strip receives rendered frames. It must not be nil, and must have at
	// least as many LEDs as Board.
	Strip Strip

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	// TickInterval is the interval between ticks in Run. If zero,
	// DefaultTickInterval will be used.
	TickInterval time.Duration

	// QueueSize is the request queue capacity. If zero, DefaultQueueSize will
	// be used.
	QueueSize int
	// MotionQueueSize is the motion queue capacity. If zero,
	// DefaultMotionQueueSize will be used.
	MotionQueueSize int

	// OnFrame, if not nil, is called with every frame sent to the strip by a
	// tick. The frame must not be retained.
	OnFrame func(now int, frame []pixel.P)
	// OnTick, if not nil, is called at the end of every tick, including ticks
	// with nothing playing. It runs on the ticking goroutine, so Heat and
	// Count may be called from it.
	OnTick func(now int)

	logger   logging.L
	res      resolver
	pool     pool
	events   anim.EventTable
	accum    []pixel.P
	colors   []anim.LEDColor
	indices  []int
	requestC chan request
	motionC  chan motion.Frame
}

// Initialize validates c's configuration and prepares it for use.
func (c *Controller) Initialize() error {
	switch {
	case c.Set == nil:
		return errors.New("an animation set is required")
	case c.Board == nil:
		return errors.New("a board is required")
	case c.Settings == nil:
		return errors.New("settings are required")
	case c.Strip == nil:
		return errors.New("a strip is required")
	}

	ledCount := c.Board.LEDCount()
	if n := c.Strip.Len(); n < ledCount {
		return errors.Errorf("strip has %d LEDs, but board %s needs %d", n, c.Board, ledCount)
	}
	if err := c.Settings.Validate(); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	if err := c.Set.Validate(ledCount); err != nil {
		return errors.Wrap(err, "invalid animation set")
	}

	queueSize := c.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	motionQueueSize := c.MotionQueueSize
	if motionQueueSize <= 0 {
		motionQueueSize = DefaultMotionQueueSize
	}

	c.logger = logging.Must(c.Logger)
	c.res = resolver{set: c.Set, logger: c.logger}
	c.pool.clear()
	c.events = c.Set.BuildEventTable()
	c.accum = make([]pixel.P, ledCount)
	c.colors = make([]anim.LEDColor, 0, ledCount*4)
	c.indices = make([]int, 0, ledCount)
	c.requestC = make(chan request, queueSize)
	c.motionC = make(chan motion.Frame, motionQueueSize)

	c.logger.Infof("Animation controller initialized with %d animations on %s.", c.Set.Count(), c.Board)
	return nil
}

// Play queues a request to play the animation at index, oriented to face.
//
// If the animation is already playing on face, it is restarted instead.
func (c *Controller) Play(index, face int, loop bool) {
	c.post(request{kind: requestPlay, index: index, face: face, loop: loop})
}

// PlayEvent queues a request to play the animation registered for evt. If no
// animation is registered for evt, the first animation is played.
func (c *Controller) PlayEvent(evt anim.Event, face int, loop bool) {
	c.post(request{kind: requestPlayEvent, event: evt, face: face, loop: loop})
}

// Stop queues a request to stop the animation at index playing on face. face
// may be AnyFace, in which case the first matching instance is stopped.
func (c *Controller) Stop(index, face int) {
	c.post(request{kind: requestStop, index: index, face: face})
}

// StopAll queues a request to stop every animation and turn the strip off.
func (c *Controller) StopAll() { c.post(request{kind: requestStopAll}) }

// Fill queues a request to set every LED on the strip to p. Playing
// animations will overwrite it on their next tick.
func (c *Controller) Fill(p pixel.P) { c.post(request{kind: requestFill, color: p}) }

// OnMotion queues a motion frame, to be applied to heat and the rainbow index
// on the next tick.
func (c *Controller) OnMotion(f motion.Frame) {
	select {
	case c.motionC <- f:
	default:
		droppedRequests.WithLabelValues(dropMotionQueueFull).Inc()
		logging.Must(c.Logger).Warnf("Motion queue is full; dropping frame at %s.", f.Time)
	}
}

func (c *Controller) post(req request) {
	select {
	case c.requestC <- req:
	default:
		droppedRequests.WithLabelValues(dropQueueFull).Inc()
		logging.Must(c.Logger).Warnf("Request queue is full; dropping %s.", &req)
	}
}

// Run calls Tick every TickInterval until ctx is cancelled, passing the number of
// milliseconds since Run was called.
func (c *Controller) Run(ctx context.Context) error {
	interval := c.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	epoch := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.Tick(int(now.Sub(epoch) / time.Millisecond))
		}
	}
}

// Tick applies queued requests and motion, then advances and renders every
// playing animation at time now, in milliseconds.
//
// If nothing is playing, the strip is left untouched.
func (c *Controller) Tick(now int) {
	start := time.Now()
	defer func() {
		tickCount.Inc()
		tickDuration.Observe(time.Since(start).Seconds())
		activeInstancesGauge.Set(float64(c.pool.len()))
		heatGauge.Set(c.res.heat)

		if c.OnTick != nil {
			c.OnTick(now)
		}
	}()

	c.drainMotion()
	c.drainRequests(now)

	c.res.heat = clampHeat(c.res.heat * c.Settings.CoolDownRate)

	if c.pool.len() == 0 {
		return
	}

	for i := range c.accum {
		c.accum[i] = pixel.Black
	}

	for i := 0; i < c.pool.len(); {
		inst := c.pool.at(i)

		elapsed := now - inst.start
		if inst.loop && elapsed > inst.anim.Duration {
			// Only one period is caught up per tick. A looping instance that
			// falls more than a full period behind expires below.
			inst.start += inst.anim.Duration
			elapsed = now - inst.start
		}

		if elapsed > inst.anim.Duration {
			c.logger.Debugf("Animation %s on face %d finished.", inst.anim, inst.face)
			expiredInstances.Inc()

			// The next instance shifts into i, so don't advance.
			c.pool.remove(i)
			continue
		}

		c.composite(inst, elapsed)
		i++
	}

	c.Strip.SetPixels(c.accum)
	c.show()

	if c.OnFrame != nil {
		c.OnFrame(now, c.accum)
	}
}

// Count returns the number of playing instances.
//
// Count, Heat, RainbowIndex and Instances must be called from the goroutine
// that calls Tick.
func (c *Controller) Count() int { return c.pool.len() }

// Heat returns the current heat value, in [0, 1].
func (c *Controller) Heat() float64 { return c.res.heat }

// RainbowIndex returns the number of non-zero motion frames applied so far.
func (c *Controller) RainbowIndex() int { return c.res.rainbow }

// Instances returns the status of every playing instance, in pool order.
func (c *Controller) Instances() []InstanceStatus {
	st := make([]InstanceStatus, c.pool.len())
	for i := range st {
		inst := c.pool.at(i)
		st[i] = InstanceStatus{
			Animation:    inst.anim,
			Face:         inst.face,
			Start:        inst.start,
			Loop:         inst.loop,
			SpecialColor: inst.special.kind(),
		}
	}
	return st
}

func (c *Controller) composite(inst *instance, elapsed int) {
	c.colors = inst.anim.Evaluate(elapsed, inst, c.colors[:0])
	for _, lc := range c.colors {
		led := c.physicalLED(inst.face, lc.Index)
		if led < 0 || led >= len(c.accum) {
			c.logger.Debugf("Animation %s track LED %d has no physical LED on face %d.", inst.anim, lc.Index, inst.face)
			continue
		}
		c.accum[led] = c.accum[led].Add(lc.Color.Gamma())
	}
}

// physicalLED maps canonical LED index canon, oriented to face, to a physical
// LED index, or -1.
func (c *Controller) physicalLED(face, canon int) int {
	return c.Board.LEDForFace(c.Board.RemapFace(face, canon))
}

func (c *Controller) drainMotion() {
	for n := len(c.motionC); n > 0; n-- {
		f := <-c.motionC
		c.applyMotion(&f)
	}
}

func (c *Controller) applyMotion(f *motion.Frame) {
	sqrMag := f.Jerk.SqrMagnitude()
	if sqrMag <= 0 {
		return
	}
	c.res.rainbow++
	c.res.heat = clampHeat(c.res.heat + math.Sqrt(sqrMag)*c.Settings.HeatUpRate)
}

func (c *Controller) drainRequests(now int) {
	for n := len(c.requestC); n > 0; n-- {
		req := <-c.requestC
		c.apply(&req, now)
	}
}

func (c *Controller) apply(req *request, now int) {
	switch req.kind {
	case requestPlay:
		if a := c.animation(req.index); a != nil {
			c.start(a, req.face, req.loop, now)
		}

	case requestPlayEvent:
		idx := c.events.Lookup(req.event)
		if idx < 0 {
			idx = 0
		}
		c.logger.Infof("Playing animation %d for event %s on face %d.", idx, req.event, req.face)
		if a := c.animation(idx); a != nil {
			c.start(a, req.face, req.loop, now)
		}

	case requestStop:
		if a := c.animation(req.index); a != nil {
			c.stop(a, req.face)
		}

	case requestStopAll:
		c.stopAll()

	case requestFill:
		c.logger.Infof("Setting all LEDs to %s.", req.color)
		for i := 0; i < c.Strip.Len(); i++ {
			c.Strip.SetPixel(i, req.color)
		}
		c.show()
	}
}

func (c *Controller) animation(index int) *anim.Animation {
	a, ok := c.Set.Animation(index)
	if !ok {
		droppedRequests.WithLabelValues(dropInvalidAnimation).Inc()
		c.logger.Errorf("Animation index %d is out of range [0, %d).", index, c.Set.Count())
		return nil
	}
	return a
}

func (c *Controller) start(a *anim.Animation, face int, loop bool, now int) {
	if face < 0 || face >= c.Board.FaceCount() {
		droppedRequests.WithLabelValues(dropInvalidFace).Inc()
		c.logger.Errorf("Cannot play animation %s on invalid face %d.", a, face)
		return
	}

	if i := c.pool.find(a, face); i >= 0 {
		inst := c.pool.at(i)
		c.clearInstance(inst)
		inst.start = now
		restartedInstances.Inc()
		c.logger.Debugf("Restarted animation %s on face %d.", a, face)
		return
	}

	inst := instance{
		anim:    a,
		start:   now,
		face:    face,
		loop:    loop,
		special: newSpecialColor(a.SpecialColor, face, c.Board.LEDCount(), &c.res),
		res:     &c.res,
	}
	if !c.pool.add(inst) {
		droppedRequests.WithLabelValues(dropPoolFull).Inc()
		c.logger.Warnf("Animation pool is full (%d); dropping animation %s on face %d.", MaxInstances, a, face)
		return
	}
	startedInstances.WithLabelValues(a.SpecialColor.String()).Inc()
	c.logger.Debugf("Playing animation %s on face %d (loop=%v).", a, face, loop)
}

func (c *Controller) stop(a *anim.Animation, face int) {
	i := c.pool.find(a, face)
	if i < 0 {
		c.logger.Debugf("Animation %s is not playing on face %d.", a, face)
		return
	}
	c.clearInstance(c.pool.at(i))
	c.pool.remove(i)
}

func (c *Controller) stopAll() {
	c.pool.clear()
	c.Strip.Clear()
	c.show()
}

// clearInstance turns off every LED driven by inst.
func (c *Controller) clearInstance(inst *instance) {
	c.indices = inst.anim.LEDIndices(c.indices[:0])
	for _, canon := range c.indices {
		if led := c.physicalLED(inst.face, canon); led >= 0 {
			c.Strip.SetPixel(led, pixel.Black)
		}
	}
	c.show()
}

func (c *Controller) show() {
	if err := c.Strip.Show(); err != nil {
		showErrors.Inc()
		c.logger.Warnf("Failed to show LED frame: %s", err)
	}
}

func clampHeat(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
