// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

// plainReader hides any io.ByteReader implementation of its base.
type plainReader struct{ io.Reader }

// plainWriter hides any io.ByteWriter implementation of its base.
type plainWriter struct{ io.Writer }

// stalledWriter accepts nothing and reports no error.
type stalledWriter struct{}

func (stalledWriter) Write([]byte) (int, error) { return 0, nil }

var _ = Describe("MakeReader", func() {
	It("returns a Reader directly", func() {
		br := bytes.NewReader(nil)
		Expect(MakeReader(br)).To(BeIdenticalTo(br))
	})

	It("simulates ReadByte on a plain Reader", func() {
		r := MakeReader(plainReader{iotest.OneByteReader(bytes.NewReader([]byte{1, 2}))})

		v, err := r.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(byte(1)))

		v, err = r.ReadByte()
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(byte(2)))

		_, err = r.ReadByte()
		Expect(err).To(Equal(io.EOF))
	})
})

var _ = Describe("MakeWriter", func() {
	It("simulates WriteByte on a plain Writer", func() {
		var buf bytes.Buffer
		w := MakeWriter(plainWriter{&buf})
		Expect(w.WriteByte(0x42)).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte{0x42}))
	})

	It("returns a Writer directly", func() {
		var buf bytes.Buffer
		Expect(MakeWriter(&buf)).To(BeIdenticalTo(&buf))
	})

	It("reports a short write instead of dropping the byte", func() {
		Expect(MakeWriter(stalledWriter{}).WriteByte(0x42)).To(Equal(io.ErrShortWrite))
	})
})

var _ = Describe("ReadFull", func() {
	It("reads across short reads", func() {
		buf := make([]byte, 4)
		Expect(ReadFull(iotest.HalfReader(bytes.NewReader([]byte{1, 2, 3, 4})), buf)).To(Succeed())
		Expect(buf).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("fails if the Reader is exhausted", func() {
		buf := make([]byte, 4)
		Expect(ReadFull(bytes.NewReader([]byte{1, 2}), buf)).To(Equal(io.EOF))
	})
})

var _ = Describe("Uvarint", func() {
	DescribeTable("round trips",
		func(v uint64, size int) {
			var buf bytes.Buffer
			n, err := WriteUvarint(&buf, v)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(size))

			got, amt, err := ReadUvarint(&buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(amt).To(Equal(size))
			Expect(got).To(Equal(v))
		},
		Entry("zero", uint64(0), 1),
		Entry("one byte", uint64(127), 1),
		Entry("two bytes", uint64(128), 2),
		Entry("frame sized", uint64(60), 1),
		Entry("max", ^uint64(0), 10),
	)

	It("returns io.EOF on an empty stream", func() {
		_, amt, err := ReadUvarint(bytes.NewReader(nil))
		Expect(err).To(Equal(io.EOF))
		Expect(amt).To(Equal(0))
	})

	It("returns io.ErrUnexpectedEOF on a truncated varint", func() {
		_, amt, err := ReadUvarint(bytes.NewReader([]byte{0x80}))
		Expect(err).To(Equal(io.ErrUnexpectedEOF))
		Expect(amt).To(Equal(1))
	})

	It("rejects an overlong varint", func() {
		data := bytes.Repeat([]byte{0xff}, 11)
		_, _, err := ReadUvarint(bytes.NewReader(data))
		Expect(err).To(HaveOccurred())
	})
})

func TestDataIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing dataio")
}
