// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package battery tracks the die's battery state from periodic voltage
// readings.
//
// Charging is detected lazily: a voltage rising noticeably above the lowest
// recent reading is taken to mean the die is on its charger.
package battery

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danjacques/pixeldie/settings"
	"github.com/danjacques/pixeldie/support/logging"

	"github.com/pkg/errors"
)

const (
	// DefaultInterval is the default time between voltage checks.
	DefaultInterval = 3 * time.Second
	// DefaultQuickInterval is the delay before a check when the LEDs switch
	// off and the last check is older than the check interval.
	DefaultQuickInterval = 100 * time.Millisecond

	// MaxHandlers is the maximum number of state change handlers.
	MaxHandlers = 2

	// ChargeStartThreshold is the voltage rise, in volts, above the lowest
	// reading that indicates charging.
	ChargeStartThreshold = 0.1

	// InvalidChargeTimeout is how long charging is believed without the
	// voltage rising further.
	InvalidChargeTimeout = 5 * time.Second
)

// State is a battery state.
type State int32

const (
	// StateUnknown is the state before the first reading.
	StateUnknown State = iota
	// StateOk means the battery is adequately charged.
	StateOk
	// StateLow means the battery voltage is below the low threshold.
	StateLow
	// StateCharging means the die appears to be charging.
	StateCharging
)

var stateNames = []string{
	StateUnknown:  "Unknown",
	StateOk:       "Ok",
	StateLow:      "Low",
	StateCharging: "Charging",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Sensor measures the battery voltage.
type Sensor interface {
	Voltage() (float64, error)
}

// SensorFunc is a Sensor implemented by a function.
type SensorFunc func() (float64, error)

// Voltage implements Sensor.
func (fn SensorFunc) Voltage() (float64, error) { return fn() }

// SysfsSensor reads a Linux power supply voltage file, such as
// "/sys/class/power_supply/BAT0/voltage_now", which reports microvolts.
type SysfsSensor string

// Voltage implements Sensor.
func (path SysfsSensor) Voltage() (float64, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return 0, err
	}
	uv, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", path)
	}
	return float64(uv) / 1e6, nil
}

// Handler is notified of battery state changes.
type Handler func(s State)

// Controller tracks the battery state.
//
// Exported fields must be set before Initialize is called. Controller's
// methods are safe for concurrent use.
type Controller struct {
	// Sensor measures the battery voltage. It must not be nil.
	Sensor Sensor
	// Settings supplies the low and high voltage thresholds. It must not be
	// nil.
	Settings *settings.Settings

	// Interval is the time between checks. If zero, DefaultInterval is used.
	Interval time.Duration
	// QuickInterval is the delay before a check once the LEDs switch off, if
	// the last check is stale. If zero, DefaultQuickInterval is used.
	QuickInterval time.Duration

	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	logger logging.L
	powerC chan bool

	mu            sync.Mutex
	state         State
	vBat          float64
	lowest        float64
	chargeStartV  float64
	chargeStartAt time.Time
	lastUpdate    time.Time
	handlers      []Handler

	suspended atomic.Bool
}

// Initialize takes the first reading and establishes the initial state.
func (c *Controller) Initialize() error {
	switch {
	case c.Sensor == nil:
		return errors.New("a sensor is required")
	case c.Settings == nil:
		return errors.New("settings are required")
	}
	c.logger = logging.Must(c.Logger)
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.QuickInterval <= 0 {
		c.QuickInterval = DefaultQuickInterval
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.powerC = make(chan bool, 4)

	v, err := c.Sensor.Voltage()
	if err != nil {
		return errors.Wrap(err, "reading battery voltage")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUnknown
	c.vBat, c.lowest = v, v
	c.state = c.computeLocked(v)
	c.lastUpdate = c.Now()
	batteryVoltageGauge.Set(v)
	batteryStateGauge.Set(float64(c.state))

	c.logger.Infof("Battery controller initialized: battery %s (%.2fV).", c.state, v)
	return nil
}

// State returns the current battery state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastVoltage returns the voltage recorded by the most recent check.
func (c *Controller) LastVoltage() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vBat
}

// Voltage takes a fresh voltage reading.
func (c *Controller) Voltage() (float64, error) {
	v, err := c.Sensor.Voltage()
	if err != nil {
		return 0, err
	}
	batteryVoltageGauge.Set(v)
	return v, nil
}

// Hook registers a state change handler. At most MaxHandlers may be
// registered.
func (c *Controller) Hook(h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.handlers) >= MaxHandlers {
		return errors.Errorf("too many battery state handlers (max %d)", MaxHandlers)
	}
	c.handlers = append(c.handlers, h)
	return nil
}

// Update takes a reading and recomputes the state, notifying handlers if it
// changed. It returns the new state.
func (c *Controller) Update() State {
	v, err := c.Sensor.Voltage()
	if err != nil {
		batteryReadErrors.Inc()
		c.logger.Warnf("Failed to read battery voltage: %s", err)
		return c.State()
	}
	batteryVoltageGauge.Set(v)

	c.mu.Lock()
	prev := c.state
	next := c.computeLocked(v)
	c.state = next
	c.lastUpdate = c.Now()
	handlers := append([]Handler(nil), c.handlers...)
	c.mu.Unlock()

	if next != prev {
		batteryStateGauge.Set(float64(next))
		c.logger.Infof("Battery is now %s, vBat = %.2fV.", next, v)
		for _, h := range handlers {
			h(next)
		}
	}
	return next
}

// computeLocked derives the next state from a new reading v. c.mu must be
// held.
func (c *Controller) computeLocked(v float64) State {
	low, high := c.Settings.BatteryLow, c.Settings.BatteryHigh
	now := c.Now()

	next := c.state
	switch c.state {
	case StateOk, StateLow:
		switch {
		case c.state == StateOk && v < low:
			next = StateLow
		case v > c.lowest+ChargeStartThreshold:
			next = StateCharging
			c.chargeStartV, c.chargeStartAt = v, now
		case v < c.lowest:
			c.lowest = v
		}

	case StateCharging:
		switch {
		case v > high:
			next = StateOk
		case v < c.chargeStartV+ChargeStartThreshold || now.Sub(c.chargeStartAt) > InvalidChargeTimeout:
			if v > low {
				next = StateOk
			} else {
				next = StateLow
			}
		}
		c.lowest = v

	default:
		if v > low {
			next = StateOk
		} else {
			next = StateLow
		}
	}

	c.vBat = v
	return next
}

// OnPowerChange is notified when the LED power rail switches. Checks are
// suspended while the LEDs are powered, since their draw skews the reading.
func (c *Controller) OnPowerChange(on bool) {
	select {
	case c.powerC <- on:
	default:
		c.logger.Warnf("Dropping LED power notification (on=%v).", on)
	}
}

// Suspended returns true if periodic checks are suspended because the LEDs
// are powered.
func (c *Controller) Suspended() bool { return c.suspended.Load() }

// Run performs periodic checks until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	timer := time.NewTimer(c.Interval)
	defer timer.Stop()
	timerC := timer.C

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timerC:
			c.Update()
			timer.Reset(c.Interval)

		case on := <-c.powerC:
			timer.Stop()
			if on {
				timerC = nil
				c.suspended.Store(true)
				continue
			}

			delay := c.Interval
			c.mu.Lock()
			if c.Now().Sub(c.lastUpdate) > c.Interval {
				delay = c.QuickInterval
			}
			c.mu.Unlock()

			timer.Reset(delay)
			timerC = timer.C
			c.suspended.Store(false)
		}
	}
}
