// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package strip drives an APA102 LED strip by bit-banging GPIO pins.
package strip

import (
	"time"

	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/support/logging"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// DefaultBitDelay is the settle time after each clock transition.
const DefaultBitDelay = time.Microsecond

// startFrameSize is the number of zero bytes that begin every frame.
const startFrameSize = 4

// pixelHeader precedes every LED's channel bytes. It selects full global
// brightness.
const pixelHeader = 0xFF

// TrailerSize returns the number of 0xFF bytes that end a frame for count
// LEDs. At least one clock edge is needed per 16 LEDs to latch every LED.
func TrailerSize(count int) int { return (count + 15) / 16 }

// APA102 is an APA102 LED strip on three GPIO pins.
//
// Exported fields must be set before Initialize is called. An APA102 is not
// safe for concurrent use.
type APA102 struct {
	// Data is the serial data pin. It must not be nil.
	Data gpio.PinOut
	// Clock is the serial clock pin. It must not be nil.
	Clock gpio.PinOut
	// Power, if not nil, switches the strip's power rail.
	Power gpio.PinOut

	// Count is the number of LEDs on the strip.
	Count int
	// Order is the strip's channel wiring order.
	Order pixel.ChannelOrder

	// BitDelay is the settle time after each clock transition. If zero,
	// DefaultBitDelay is used.
	BitDelay time.Duration
	// Delay, if not nil, waits for the supplied duration. If nil, a spin wait
	// is used.
	Delay func(time.Duration)

	// OnPowerChange, if not nil, is called whenever the power rail switches.
	OnPowerChange func(on bool)

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	logger   logging.L
	buf      pixel.Buffer
	bitDelay time.Duration
	delay    func(time.Duration)
	powered  bool
	err      error
}

// Initialize validates the strip's configuration, allocates its buffer and
// drives every pin low.
func (s *APA102) Initialize() error {
	switch {
	case s.Data == nil:
		return errors.New("a data pin is required")
	case s.Clock == nil:
		return errors.New("a clock pin is required")
	case s.Count <= 0:
		return errors.Errorf("invalid LED count %d", s.Count)
	case !s.Order.Valid():
		return errors.Errorf("invalid channel order %d", s.Order)
	}

	s.logger = logging.Must(s.Logger)
	s.bitDelay = s.BitDelay
	if s.bitDelay <= 0 {
		s.bitDelay = DefaultBitDelay
	}
	s.delay = s.Delay
	if s.delay == nil {
		s.delay = spin
	}

	s.buf.Order = s.Order
	s.buf.Reset(s.Count)

	s.err = nil
	s.out(s.Data, gpio.Low)
	s.out(s.Clock, gpio.Low)
	if s.Power != nil {
		s.out(s.Power, gpio.Low)
	}
	s.powered = false
	if s.err != nil {
		return s.err
	}

	s.logger.Infof("Initialized %d-LED APA102 strip (%s) on data=%s clock=%s.", s.Count, s.Order, s.Data, s.Clock)
	return nil
}

// Len returns the number of LEDs on the strip.
func (s *APA102) Len() int { return s.buf.Len() }

// SetPixel sets LED i. Out-of-range indices are ignored.
func (s *APA102) SetPixel(i int, p pixel.P) { s.buf.SetPixel(i, p) }

// Pixel returns the colour of LED i, or black if i is out of range.
func (s *APA102) Pixel(i int) pixel.P { return s.buf.Pixel(i) }

// SetPixels sets LEDs starting at index 0.
func (s *APA102) SetPixels(pixels []pixel.P) { s.buf.SetPixels(pixels) }

// Clear turns every LED off. It takes effect on the next Show.
func (s *APA102) Clear() { s.buf.Clear() }

// Powered returns true if the power rail is currently on.
func (s *APA102) Powered() bool { return s.powered }

// Show writes the buffer to the strip.
//
// The power rail is switched on for the transfer and switched back off
// afterwards if every LED is dark.
func (s *APA102) Show() error {
	start := time.Now()
	s.err = nil

	s.setPower(true)

	for i := 0; i < startFrameSize; i++ {
		s.writeByte(0x00)
	}
	raw := s.buf.Bytes()
	for i := 0; i+2 < len(raw); i += 3 {
		s.writeByte(pixelHeader)
		s.writeByte(raw[i])
		s.writeByte(raw[i+1])
		s.writeByte(raw[i+2])
	}
	for i := TrailerSize(s.buf.Len()); i > 0; i-- {
		s.writeByte(0xFF)
	}

	s.out(s.Data, gpio.Low)
	s.out(s.Clock, gpio.Low)

	if s.buf.IsDark() {
		s.setPower(false)
	}

	if s.err != nil {
		stripShowErrors.Inc()
		return s.err
	}
	stripFramesShown.Inc()
	stripShowDuration.Observe(time.Since(start).Seconds())
	return nil
}

func (s *APA102) setPower(on bool) {
	if s.Power == nil {
		return
	}
	s.out(s.Power, gpio.Level(on))
	if s.err != nil || s.powered == on {
		return
	}

	s.powered = on
	if on {
		stripPowerGauge.Set(1)
	} else {
		stripPowerGauge.Set(0)
	}
	s.logger.Debugf("Strip power %v.", on)
	if s.OnPowerChange != nil {
		s.OnPowerChange(on)
	}
}

// writeByte clocks b out most significant bit first.
func (s *APA102) writeByte(b byte) {
	for mask := byte(0x80); mask != 0 && s.err == nil; mask >>= 1 {
		s.out(s.Data, gpio.Level(b&mask != 0))
		s.out(s.Clock, gpio.High)
		s.delay(s.bitDelay)
		s.out(s.Clock, gpio.Low)
		s.delay(s.bitDelay)
	}
	if s.err == nil {
		stripBytesWritten.Inc()
	}
}

func (s *APA102) out(p gpio.PinOut, l gpio.Level) {
	if s.err != nil {
		return
	}
	if err := p.Out(l); err != nil {
		s.err = errors.Wrapf(err, "setting pin %s %s", p, l)
	}
}

func spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}

// Pins resolves a board's strip pins through the GPIO registry. The power pin
// is optional.
func Pins(p board.Pins) (data, clock, power gpio.PinIO, err error) {
	lookup := func(kind, name string) (gpio.PinIO, error) {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, errors.Errorf("unknown %s pin %q", kind, name)
		}
		return pin, nil
	}

	if data, err = lookup("data", p.Data); err != nil {
		return
	}
	if clock, err = lookup("clock", p.Clock); err != nil {
		return
	}
	if p.Power != "" {
		power, err = lookup("power", p.Power)
	}
	return
}
