// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package striptest

import (
	"testing"

	"github.com/danjacques/pixeldie/pixel"

	"periph.io/x/conn/v3/gpio"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Clock", func() {
	It("samples data on rising edges", func() {
		pins := NewPins()
		send := func(bits ...gpio.Level) {
			for _, b := range bits {
				Expect(pins.Data.Out(b)).To(Succeed())
				Expect(pins.Clock.Out(gpio.High)).To(Succeed())
				// Repeated highs are not edges.
				Expect(pins.Clock.Out(gpio.High)).To(Succeed())
				Expect(pins.Clock.Out(gpio.Low)).To(Succeed())
			}
		}

		send(gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.Low, gpio.Low, gpio.High, gpio.High, gpio.High)
		Expect(pins.Clock.BitCount()).To(Equal(9))
		Expect(pins.Clock.Bytes()).To(Equal([]byte{0xA3}))

		pins.Clock.Reset()
		Expect(pins.Clock.BitCount()).To(BeZero())
	})
})

var _ = Describe("Decode", func() {
	It("decodes consecutive frames", func() {
		b := []byte{
			0, 0, 0, 0,
			0xFF, 1, 2, 3,
			0xE1, 4, 5, 6,
			0xFF,
			0, 0, 0, 0,
			0xFF, 0, 0, 0,
			0xFF, 0, 0, 0,
			0xFF,
		}

		f, rest, err := Decode(b, 2, pixel.OrderRGB)
		Expect(err).ToNot(HaveOccurred())
		Expect(f.Pixels).To(Equal([]pixel.P{{Red: 1, Green: 2, Blue: 3}, {Red: 4, Green: 5, Blue: 6}}))
		Expect(f.Headers).To(Equal([]byte{0xFF, 0xE1}))
		Expect(f.TrailerSize).To(Equal(1))

		f, rest, err = Decode(rest, 2, pixel.OrderRGB)
		Expect(err).ToNot(HaveOccurred())
		Expect(f.Pixels).To(Equal([]pixel.P{{}, {}}))
		Expect(rest).To(BeEmpty())
	})

	It("honours channel order", func() {
		f, _, err := Decode([]byte{0, 0, 0, 0, 0xFF, 3, 1, 2, 0xFF}, 1, pixel.OrderBRG)
		Expect(err).ToNot(HaveOccurred())
		Expect(f.Pixels[0]).To(Equal(pixel.P{Red: 1, Green: 2, Blue: 3}))
	})

	It("rejects malformed frames", func() {
		_, _, err := Decode([]byte{0, 0}, 1, pixel.OrderRGB)
		Expect(err).To(HaveOccurred())

		_, _, err = Decode([]byte{0, 1, 0, 0, 0xFF, 0, 0, 0}, 1, pixel.OrderRGB)
		Expect(err).To(HaveOccurred())

		_, _, err = Decode([]byte{0, 0, 0, 0, 0x00, 0, 0, 0}, 1, pixel.OrderRGB)
		Expect(err).To(HaveOccurred())

		_, _, err = Decode([]byte{0, 0, 0, 0, 0xFF, 0}, 1, pixel.OrderRGB)
		Expect(err).To(HaveOccurred())
	})
})

func TestStripTest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test striptest")
}
