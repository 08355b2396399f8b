// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package recordio

import (
	"bytes"
	"io"

	"github.com/danjacques/pixeldie/support/dataio"

	"github.com/pkg/errors"
)

// DefaultMaxSize is the default maximum record size accepted by a Decoder.
const DefaultMaxSize = 1024 * 1024

// Decoder is a reusable object which decodes a series of records from a
// stream.
type Decoder struct {
	// MaxSize, if >0, is the maximum record size to accept. If <= 0,
	// DefaultMaxSize will be used.
	MaxSize int

	dataBuf bytes.Buffer
}

// Read reads the next record from r.
//
// The returned slice is owned by the Decoder, and is only valid until the
// next Read call. Read returns the number of bytes consumed from r.
//
// If r is exhausted at a record boundary, Read returns io.EOF. A record that
// is cut short returns io.ErrUnexpectedEOF.
func (d *Decoder) Read(r dataio.Reader) ([]byte, int64, error) {
	size, amt, err := dataio.ReadUvarint(r)
	count := int64(amt)
	if err != nil {
		return nil, count, err
	}

	maxSize := d.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if size > uint64(maxSize) {
		return nil, count, errors.Errorf("record size %d exceeds maximum (%d)", size, maxSize)
	}

	// Read the prescribed amount into our buffer.
	d.dataBuf.Reset()
	d.dataBuf.Grow(int(size))
	lr := io.LimitedReader{
		R: r,
		N: int64(size),
	}
	readCount, err := d.dataBuf.ReadFrom(&lr)
	count += readCount
	if err != nil {
		return nil, count, err
	}
	if readCount != int64(size) {
		return nil, count, io.ErrUnexpectedEOF
	}
	return d.dataBuf.Bytes(), count, nil
}
