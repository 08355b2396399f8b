// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bufferpool

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	var bp *Pool

	BeforeEach(func() {
		bp = &Pool{Size: 4}
	})

	It("returns full buffers from Get", func() {
		b := bp.Get()
		defer b.Release()

		Expect(b.Len()).To(Equal(4))
		Expect(b.Cap()).To(Equal(4))

		copy(b.Bytes(), []byte{1, 2, 3})
		b.Truncate(3)
		Expect(b.Bytes()).To(Equal([]byte{1, 2, 3}))
		Expect(func() { b.Truncate(5) }).To(Panic())
	})

	It("writes into empty buffers up to capacity", func() {
		b := bp.GetEmpty()
		defer b.Release()
		Expect(b.Len()).To(Equal(0))

		Expect(b.WriteByte(0x0e)).To(Succeed())
		n, err := b.Write([]byte{1, 2})
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(b.Bytes()).To(Equal([]byte{0x0e, 1, 2}))

		n, err = b.Write([]byte{3, 4})
		Expect(err).To(Equal(ErrFull))
		Expect(n).To(Equal(1))
		Expect(b.WriteByte(5)).To(Equal(ErrFull))
		Expect(b.Bytes()).To(Equal([]byte{0x0e, 1, 2, 3}))
	})

	It("resets recycled buffers", func() {
		b := bp.GetEmpty()
		_, _ = b.Write([]byte{1})
		b.Retain()
		b.Release()
		b.Release()

		b = bp.Get()
		defer b.Release()
		Expect(b.Len()).To(Equal(4))
	})
})

func TestBufferPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing bufferpool")
}
