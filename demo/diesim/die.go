// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"context"
	"sync"
	"time"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/battery"
	"github.com/danjacques/pixeldie/behavior"
	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/controller"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/settings"
	"github.com/danjacques/pixeldie/strip"
	"github.com/danjacques/pixeldie/strip/striptest"
	"github.com/danjacques/pixeldie/support/logging"

	"github.com/pkg/errors"
)

const (
	// sampleInterval is the simulated accelerometer sample period.
	sampleInterval = 20 * time.Millisecond
	// batteryInterval is the simulated battery check period.
	batteryInterval = 500 * time.Millisecond
	// rollDuration is how long a simulated roll lasts.
	rollDuration = time.Second
)

// dieConfig configures a simulated die.
type dieConfig struct {
	Board    *board.Board
	Settings *settings.Settings
	Set      *anim.Set
	Rules    []behavior.Rule
	Order    pixel.ChannelOrder

	// Link, if not nil, receives PlaySound actions.
	Link behavior.Link

	// OnFrame, if not nil, receives every frame the controller renders.
	OnFrame func(now int, frame []pixel.P)

	Logger logging.L
}

// die is a simulated die: the real animation, motion, battery and behavior
// subsystems driving an APA102 strip over fake GPIO pins.
type die struct {
	board    *board.Board
	pins     *striptest.Pins
	ctrl     *controller.Controller
	tracker  *motion.Tracker
	battery  *battery.Controller
	behavior *behavior.Behavior
	accel    *accelerometer
	cell     *cell
	leds     ledState
	logger   logging.L

	statsMu sync.Mutex
	heat    float64
	playing int
}

func newDie(cfg *dieConfig) (*die, error) {
	d := die{
		board:  cfg.Board,
		pins:   striptest.NewPins(),
		accel:  newAccelerometer(cfg.Board, time.Now().UnixNano()),
		cell:   &cell{volts: 3.7},
		logger: logging.Must(cfg.Logger),
	}

	ledCount := cfg.Board.LEDCount()
	apa := &strip.APA102{
		Data:   d.pins.Data,
		Clock:  d.pins.Clock,
		Power:  d.pins.Power,
		Count:  ledCount,
		Order:  cfg.Order,
		Delay:  func(time.Duration) {},
		Logger: logging.Prefixed(cfg.Logger, "strip"),
	}

	d.battery = &battery.Controller{
		Sensor:   battery.SensorFunc(d.cell.Voltage),
		Settings: cfg.Settings,
		Interval: batteryInterval,
		Logger:   logging.Prefixed(cfg.Logger, "battery"),
	}
	apa.OnPowerChange = func(on bool) {
		d.leds.setPowered(on)
		d.battery.OnPowerChange(on)
	}
	if err := apa.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initializing strip")
	}

	d.ctrl = &controller.Controller{
		Set:      cfg.Set,
		Board:    cfg.Board,
		Settings: cfg.Settings,
		Strip: &wireStrip{
			APA102: apa,
			pins:   d.pins,
			order:  cfg.Order,
			leds:   &d.leds,
			logger: d.logger,
		},
		OnFrame: cfg.OnFrame,
		OnTick:  d.recordStats,
		Logger:  logging.Prefixed(cfg.Logger, "controller"),
	}
	if err := d.ctrl.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initializing controller")
	}

	d.tracker = &motion.Tracker{
		Board:    cfg.Board,
		Settings: cfg.Settings,
		OnFrame:  d.ctrl.OnMotion,
		Logger:   logging.Prefixed(cfg.Logger, "motion"),
	}

	d.behavior = &behavior.Behavior{
		Executor: behavior.Executor{
			Player:     d.ctrl,
			Animations: cfg.Set,
			Faces:      d.tracker,
			Link:       cfg.Link,
			Logger:     logging.Prefixed(cfg.Logger, "behavior"),
		},
		Rules:  cfg.Rules,
		Logger: logging.Prefixed(cfg.Logger, "behavior"),
	}
	d.tracker.OnState = d.behavior.OnMotionState

	if err := d.battery.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initializing battery")
	}
	if err := d.battery.Hook(d.behavior.OnBatteryState); err != nil {
		return nil, err
	}
	return &d, nil
}

// run drives the die until c is cancelled.
func (d *die) run(c context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = d.ctrl.Run(c)
	}()
	go func() {
		defer wg.Done()
		d.runSamples(c)
	}()
	go func() {
		defer wg.Done()
		_ = d.battery.Run(c)
	}()

	d.behavior.Hello()
	wg.Wait()
}

// recordStats is the controller's OnTick hook.
func (d *die) recordStats(int) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.heat, d.playing = d.ctrl.Heat(), d.ctrl.Count()
}

func (d *die) runSamples(c context.Context) {
	t := time.NewTicker(sampleInterval)
	defer t.Stop()

	epoch := time.Now()
	for {
		select {
		case <-c.Done():
			return
		case now := <-t.C:
			d.sample(now.Sub(epoch))
		}
	}
}

// sample feeds one simulated accelerometer reading taken at at.
func (d *die) sample(at time.Duration) motion.Frame {
	return d.tracker.Update(at, d.accel.Sample(at))
}

// stats returns the controller statistics recorded by the last tick.
func (d *die) stats() (heat float64, playing int) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.heat, d.playing
}

// wireStrip is an APA102 strip whose every transfer is decoded back off the
// wire into a ledState.
type wireStrip struct {
	*strip.APA102

	pins   *striptest.Pins
	order  pixel.ChannelOrder
	leds   *ledState
	logger logging.L
}

func (s *wireStrip) Show() error {
	defer s.pins.Clock.Reset()
	if err := s.APA102.Show(); err != nil {
		return err
	}

	f, _, err := striptest.Decode(s.pins.Clock.Bytes(), s.Len(), s.order)
	if err != nil {
		s.logger.Warnf("Could not decode strip transfer: %s", err)
		return nil
	}
	s.leds.SetPixels(f.Pixels)
	return s.leds.Show()
}

// ledState holds the most recently displayed LED colours. It satisfies
// capture.Sink, and is safe for concurrent use.
type ledState struct {
	mu      sync.Mutex
	pending []pixel.P
	shown   []pixel.P
	powered bool
}

func (ls *ledState) SetPixels(pixels []pixel.P) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.pending = append(ls.pending[:0], pixels...)
}

func (ls *ledState) Show() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.shown = append(ls.shown[:0], ls.pending...)
	return nil
}

func (ls *ledState) setPowered(on bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.powered = on
}

// snapshot returns a copy of the shown LEDs and the power rail state.
func (ls *ledState) snapshot() ([]pixel.P, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]pixel.P(nil), ls.shown...), ls.powered
}
