// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"io"
)

// Reader represents a Reader that can read both individual bytes and
// sequences of bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for the specified Reader. If r already implements
// io.ByteReader, it is returned directly; otherwise, single-byte reads are
// issued against r, so callers should supply a buffered Reader.
func MakeReader(r io.Reader) Reader {
	if dr, ok := r.(Reader); ok {
		return dr
	}
	return &simulatedReader{r}
}

type simulatedReader struct {
	io.Reader
}

func (r *simulatedReader) ReadByte() (byte, error) {
	var d [1]byte
	for {
		switch amt, err := r.Read(d[:]); {
		case amt == 1:
			return d[0], nil
		case err != nil:
			return 0, err
		}
		// A zero-length read with no error is permitted; try again.
	}
}
