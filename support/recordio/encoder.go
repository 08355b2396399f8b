// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package recordio reads and writes streams of size-prefixed binary records.
//
// Each record is encoded as an unsigned varint length followed by that many
// bytes of record data.
package recordio

import (
	"bytes"
	"io"

	"github.com/danjacques/pixeldie/support/dataio"
)

// Encoder encodes a record stream to an io.Writer.
type Encoder struct {
	buf bytes.Buffer
}

// Write writes a single record, composed of the concatenation of parts, to w.
//
// The record is assembled in memory and written to w with a single Write
// call. Write returns the total number of bytes written, including the size
// prefix.
func (e *Encoder) Write(w io.Writer, parts ...[]byte) (int, error) {
	e.buf.Reset()

	size := 0
	for _, p := range parts {
		size += len(p)
	}

	// Encode the size prefix, as a varint.
	if _, err := dataio.WriteUvarint(&e.buf, uint64(size)); err != nil {
		return 0, err
	}
	for _, p := range parts {
		_, _ = e.buf.Write(p)
	}

	// Write the full buffer to "w".
	return w.Write(e.buf.Bytes())
}
