// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixel

import (
	"github.com/pkg/errors"
)

// pixelSize is the number of bytes used by a single pixel.
const pixelSize = 3

// Buffer represents the wire format for a series of consecutive pixels: a
// flat array of per-pixel channel triples in the configured channel order.
type Buffer struct {
	// Order is the channel order of the buffered data.
	//
	// Adjusting this value will invalidate the current buffered data. The user
	// must call Reset afterwards.
	Order ChannelOrder

	buf []byte
}

// Len returns the number of pixels allocated in pb.
func (pb *Buffer) Len() int { return len(pb.buf) / pixelSize }

// Reset clears the buffer and allocates room for size pixels.
//
// If the underlying buffer is already >= this size, it will be reused;
// otherwise, a new buffer will be allocated.
func (pb *Buffer) Reset(size int) {
	if !pb.Order.Valid() {
		panic(errors.Errorf("unknown channel order: %d", pb.Order))
	}

	bytesNeeded := size * pixelSize
	if cap(pb.buf) < bytesNeeded {
		pb.buf = make([]byte, bytesNeeded)
		return
	}
	pb.buf = pb.buf[:bytesNeeded]
	pb.Clear()
}

// Clear zeroes every pixel in the buffer without changing its size.
func (pb *Buffer) Clear() {
	for i := range pb.buf {
		pb.buf[i] = 0
	}
}

// Bytes returns the raw bytes for this buffer, in wire order.
func (pb *Buffer) Bytes() []byte { return pb.buf }

// Pixel returns the pixel data for the Pixel at index i.
//
// If i is out of bounds, Pixel will return a zero value.
func (pb *Buffer) Pixel(i int) (p P) {
	offset := i * pixelSize
	if i < 0 || offset >= len(pb.buf) {
		return
	}

	r, g, b := pb.Order.offsets()
	p.Red, p.Green, p.Blue = pb.buf[offset+r], pb.buf[offset+g], pb.buf[offset+b]
	return
}

// SetPixel sets the pixel value at index i.
//
// If i is out of bounds, SetPixel will do nothing.
func (pb *Buffer) SetPixel(i int, p P) {
	offset := i * pixelSize
	if i < 0 || offset >= len(pb.buf) {
		return
	}

	r, g, b := pb.Order.offsets()
	pb.buf[offset+r], pb.buf[offset+g], pb.buf[offset+b] = p.Red, p.Green, p.Blue
}

// SetPixels copies pixels into the buffer, starting at index 0. Pixels beyond
// the end of the buffer are ignored; buffer pixels beyond the end of pixels
// are left untouched.
func (pb *Buffer) SetPixels(pixels []P) {
	for i, p := range pixels {
		if i >= pb.Len() {
			return
		}
		pb.SetPixel(i, p)
	}
}

// Fill sets every pixel in the buffer to p.
func (pb *Buffer) Fill(p P) {
	for i := 0; i < pb.Len(); i++ {
		pb.SetPixel(i, p)
	}
}

// IsDark returns true if every channel of every pixel is zero.
func (pb *Buffer) IsDark() bool {
	for _, v := range pb.buf {
		if v != 0 {
			return false
		}
	}
	return true
}
