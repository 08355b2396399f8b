// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bufferpool offers reference-counted, reusable datagram buffers.
package bufferpool

import (
	"sync"
	"sync/atomic"
)

// Pool maintains a pool of buffers. It offers a new buffer when one is
// unavailable.
type Pool struct {
	// Size is the capacity of the buffers in this pool.
	Size int

	base sync.Pool
}

// Get returns a buffer, allocating one if one is not available. The returned
// buffer is full (Len equals the pool's Size) and has a reference count of 1.
//
// The caller should return the buffer to the pool by calling its Release method
// when done with it.
func (bp *Pool) Get() *Buffer {
	b, ok := bp.base.Get().(*Buffer)
	if !ok || len(b.bytes) != bp.Size {
		b = &Buffer{
			bytes: make([]byte, bp.Size),
		}
	}

	b.pool = bp
	b.size = len(b.bytes)
	b.refcount = 1
	return b
}

// GetEmpty returns a buffer as Get does, but Reset, suitable for writing.
func (bp *Pool) GetEmpty() *Buffer {
	b := bp.Get()
	b.Reset()
	return b
}

func (bp *Pool) releaseNode(b *Buffer) {
	bp.base.Put(b)
}

// Buffer contains a byte buffer that can be released into a Pool for reuse.
//
// A Buffer is either filled by a reader (Get, read into Bytes, Truncate) or
// built up by a writer (GetEmpty, Write). Writes beyond the pool's Size fail
// with ErrFull.
//
// Buffer is reference counted, and can be retained and released appropriately.
// Failure to release Buffer will not cause a memory leak, but will prevent the
// reuse of the Buffer.
type Buffer struct {
	refcount int64

	bytes []byte
	size  int

	pool *Pool
}

// ErrFull is returned when a Write would exceed a Buffer's capacity.
var ErrFull = bufferFullError{}

type bufferFullError struct{}

func (bufferFullError) Error() string { return "buffer is full" }

// Bytes returns this buffer's byte slice.
func (b *Buffer) Bytes() []byte { return b.bytes[:b.size] }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return b.size }

// Cap returns the capacity of the buffer.
func (b *Buffer) Cap() int { return len(b.bytes) }

// Truncate caps the number of bytes returned by Bytes. size must not exceed
// Cap.
func (b *Buffer) Truncate(size int) {
	if size < 0 || size > len(b.bytes) {
		panic("truncate out of range")
	}
	b.size = size
}

// Reset empties the buffer.
func (b *Buffer) Reset() { b.size = 0 }

// Write implements io.Writer, appending d to the buffer.
func (b *Buffer) Write(d []byte) (int, error) {
	n := copy(b.bytes[b.size:], d)
	b.size += n
	if n < len(d) {
		return n, ErrFull
	}
	return n, nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	if b.size >= len(b.bytes) {
		return ErrFull
	}
	b.bytes[b.size] = c
	b.size++
	return nil
}

// Release returns the buffer to its buffer pool.
//
// Release is safe for concurrent use.
//
// A Buffer must only be released once.
func (b *Buffer) Release() {
	if atomic.AddInt64(&b.refcount, -1) != 0 {
		return
	}

	var pool *Pool
	pool, b.pool = b.pool, nil
	pool.releaseNode(b)
}

// Retain increases the Buffer's reference count. It should be accompanied by
// a Release call to reuse the buffer when it's finished.
func (b *Buffer) Retain() { atomic.AddInt64(&b.refcount, 1) }
