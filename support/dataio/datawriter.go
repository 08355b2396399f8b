// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"io"
)

// Writer is an io.Writer that can also write single bytes. Message encoding
// writes type and size bytes individually.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// MakeWriter returns a Writer for w. If w already implements io.ByteWriter, it
// is returned directly; otherwise, each WriteByte is a one-byte Write against
// w, so callers should supply a buffered Writer.
func MakeWriter(w io.Writer) Writer {
	if bw, ok := w.(Writer); ok {
		return bw
	}
	return &simulatedWriter{w}
}

type simulatedWriter struct {
	io.Writer
}

func (w *simulatedWriter) WriteByte(c byte) error {
	d := [1]byte{c}
	amt, err := w.Write(d[:])
	if err != nil {
		return err
	}
	if amt != 1 {
		return io.ErrShortWrite
	}
	return nil
}
