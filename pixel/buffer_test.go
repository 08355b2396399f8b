// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixel

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pixel Buffer", func() {
	Context("an RGB Buffer", func() {
		var pb *Buffer
		BeforeEach(func() {
			pb = &Buffer{Order: OrderRGB}
		})

		It("has length 0", func() {
			Expect(pb.Len()).To(Equal(0))
			Expect(pb.Bytes()).To(HaveLen(0))
			Expect(pb.IsDark()).To(BeTrue())
		})

		It("will grow its buffer when reset", func() {
			pb.Reset(5)
			Expect(pb.Len()).To(Equal(5))
			Expect(pb.Bytes()).To(HaveLen(15))
		})

		It("zeroes a reused buffer on reset", func() {
			pb.Reset(2)
			pb.Fill(P{Red: 1, Green: 2, Blue: 3})
			pb.Reset(1)
			Expect(pb.Bytes()).To(Equal([]byte{0, 0, 0}))
		})

		It("ignores out-of-range pixels", func() {
			pb.Reset(2)
			pb.SetPixel(-1, P{Red: 1})
			pb.SetPixel(2, P{Red: 1})
			Expect(pb.IsDark()).To(BeTrue())
			Expect(pb.Pixel(2)).To(Equal(Black))
			Expect(pb.Pixel(-1)).To(Equal(Black))
		})

		It("reports a non-dark buffer", func() {
			pb.Reset(3)
			pb.SetPixel(2, P{Blue: 1})
			Expect(pb.IsDark()).To(BeFalse())

			pb.Clear()
			Expect(pb.IsDark()).To(BeTrue())
			Expect(pb.Len()).To(Equal(3))
		})

		It("copies a slice of pixels", func() {
			pb.Reset(2)
			pb.SetPixels([]P{{Red: 1}, {Green: 2}, {Blue: 3}})
			Expect(pb.Bytes()).To(Equal([]byte{1, 0, 0, 0, 2, 0}))
		})
	})

	DescribeTable("wire order",
		func(order ChannelOrder, wire []byte) {
			pb := Buffer{Order: order}
			pb.Reset(1)
			pb.SetPixel(0, P{Red: 0x11, Green: 0x22, Blue: 0x33})
			Expect(pb.Bytes()).To(Equal(wire))
			Expect(pb.Pixel(0)).To(Equal(P{Red: 0x11, Green: 0x22, Blue: 0x33}))
		},
		Entry("RGB", OrderRGB, []byte{0x11, 0x22, 0x33}),
		Entry("RBG", OrderRBG, []byte{0x11, 0x33, 0x22}),
		Entry("GBR", OrderGBR, []byte{0x22, 0x33, 0x11}),
		Entry("GRB", OrderGRB, []byte{0x22, 0x11, 0x33}),
		Entry("BGR", OrderBGR, []byte{0x33, 0x22, 0x11}),
		Entry("BRG", OrderBRG, []byte{0x33, 0x11, 0x22}),
	)

	Context("channel order names", func() {
		It("round-trips through its name", func() {
			for o := OrderRGB; o <= OrderBRG; o++ {
				parsed, err := ParseChannelOrder(o.String())
				Expect(err).ToNot(HaveOccurred())
				Expect(parsed).To(Equal(o))
			}
		})

		It("accepts lower case names as a flag value", func() {
			var o ChannelOrder
			Expect(o.Set("brg")).To(Succeed())
			Expect(o).To(Equal(OrderBRG))
		})

		It("rejects unknown names", func() {
			_, err := ParseChannelOrder("RGBW")
			Expect(err).To(HaveOccurred())
			Expect(ChannelOrder(42).String()).To(Equal("INVALID"))
		})
	})
})
