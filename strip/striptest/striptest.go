// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package striptest provides in-memory strip pins that capture the bitstream
// written to them, and a decoder for APA102 frames.
package striptest

import (
	"sync"

	"github.com/danjacques/pixeldie/pixel"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Clock is a clock pin that samples a data pin on every rising edge.
type Clock struct {
	*gpiotest.Pin

	// Data is the data pin sampled on each rising edge.
	Data gpio.PinIn

	mu    sync.Mutex
	level gpio.Level
	bits  []gpio.Level
}

var _ gpio.PinOut = (*Clock)(nil)

// Out implements gpio.PinOut.
func (c *Clock) Out(l gpio.Level) error {
	if err := c.Pin.Out(l); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if l == gpio.High && c.level == gpio.Low {
		c.bits = append(c.bits, c.Data.Read())
	}
	c.level = l
	return nil
}

// BitCount returns the number of bits captured.
func (c *Clock) BitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bits)
}

// Bytes returns the captured bits packed most significant bit first. A
// trailing partial byte is discarded.
func (c *Clock) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]byte, len(c.bits)/8)
	for i := range out {
		var b byte
		for _, bit := range c.bits[i*8 : i*8+8] {
			b <<= 1
			if bit {
				b |= 1
			}
		}
		out[i] = b
	}
	return out
}

// Reset discards all captured bits.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bits = nil
}

// Pins is a set of strip pins backed by gpiotest pins.
type Pins struct {
	Data  *gpiotest.Pin
	Clock *Clock
	Power *gpiotest.Pin
}

// NewPins returns a new set of test pins.
func NewPins() *Pins {
	data := &gpiotest.Pin{N: "DATA", Num: 10}
	return &Pins{
		Data: data,
		Clock: &Clock{
			Pin:  &gpiotest.Pin{N: "CLOCK", Num: 11},
			Data: data,
		},
		Power: &gpiotest.Pin{N: "POWER", Num: 25},
	}
}

// Frame is a decoded APA102 frame.
type Frame struct {
	// Headers is the header byte that preceded each LED.
	Headers []byte
	// Pixels holds the LED colours.
	Pixels []pixel.P
	// TrailerSize is the number of trailing 0xFF bytes.
	TrailerSize int
}

// Decode decodes a single frame for count LEDs wired in order from the
// beginning of b. It returns the frame and the remainder of b.
func Decode(b []byte, count int, order pixel.ChannelOrder) (*Frame, []byte, error) {
	const startSize = 4
	if len(b) < startSize {
		return nil, nil, errors.Errorf("short start frame (%d bytes)", len(b))
	}
	for i, v := range b[:startSize] {
		if v != 0 {
			return nil, nil, errors.Errorf("start frame byte %d is 0x%02x", i, v)
		}
	}
	b = b[startSize:]

	if len(b) < count*4 {
		return nil, nil, errors.Errorf("need %d bytes for %d LEDs, have %d", count*4, count, len(b))
	}

	f := Frame{
		Headers: make([]byte, count),
	}
	pb := pixel.Buffer{Order: order}
	pb.Reset(count)
	raw := pb.Bytes()
	for i := 0; i < count; i++ {
		led := b[i*4 : i*4+4]
		if led[0]&0xE0 != 0xE0 {
			return nil, nil, errors.Errorf("LED %d has invalid header 0x%02x", i, led[0])
		}
		f.Headers[i] = led[0]
		copy(raw[i*3:], led[1:])
	}
	b = b[count*4:]

	f.Pixels = make([]pixel.P, count)
	for i := range f.Pixels {
		f.Pixels[i] = pb.Pixel(i)
	}

	for len(b) > 0 && b[0] == 0xFF {
		f.TrailerSize++
		b = b[1:]
	}
	return &f, b, nil
}
