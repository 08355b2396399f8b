// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadFull reads from r until buf is full, or until an error is encountered.
//
// This accommodates the fact that io.Reader is allowed to return less than the
// full buffer size without erroring.
func ReadFull(r io.Reader, buf []byte) error {
	// Read until we fill our buffer or encounter an error.
	for remaining := buf; len(remaining) > 0; {
		amt, err := r.Read(remaining)
		remaining = remaining[amt:]
		if err != nil {
			if err == io.EOF && len(remaining) == 0 {
				// Finished read and returned EOF.
				return nil
			}

			// Either did not finish read, or returned a non-EOF error.
			return err
		}
	}
	return nil
}

// WriteUvarint writes v to w as an unsigned varint, returning the number of
// bytes written.
func WriteUvarint(w io.Writer, v uint64) (int, error) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return w.Write(buf[:n])
}

// ReadUvarint reads an unsigned varint from r byte-by-byte, returning the
// value and the number of bytes consumed.
//
// If r is exhausted before the first byte, io.EOF is returned unwrapped.
func ReadUvarint(r io.ByteReader) (uint64, int, error) {
	var (
		v     uint64
		shift uint
	)
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, i, err
		}

		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, i + 1, errors.New("varint overflows a 64-bit integer")
			}
			return v | uint64(b)<<shift, i + 1, nil
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
	return 0, binary.MaxVarintLen64, errors.New("varint overflows a 64-bit integer")
}
