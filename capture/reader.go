// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package capture

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/support/dataio"
	"github.com/danjacques/pixeldie/support/recordio"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// readBufferSize is the size of the buffered frame file reader.
const readBufferSize = 64 * 1024

// Frame is a single captured frame.
type Frame struct {
	// Offset is the frame's offset from the first frame in the capture.
	Offset time.Duration
	// Pixels is the frame's content, in canonical LED order.
	Pixels []pixel.P
}

// Reader reads frames from a capture.
//
// Reader is not safe for concurrent use.
type Reader struct {
	path string
	md   *Metadata

	fd  *os.File
	br  *bufio.Reader
	r   dataio.Reader
	dec recordio.Decoder

	position time.Duration
}

// Open opens the capture at path for reading.
func Open(path string) (*Reader, error) {
	md, err := LoadMetadata(path)
	if err != nil {
		return nil, err
	}

	r := Reader{
		path: path,
		md:   md,
	}
	r.dec.MaxSize = recordMaxSize(md.LEDCount)
	if err := r.Reset(); err != nil {
		return nil, err
	}
	return &r, nil
}

func recordMaxSize(ledCount int) int {
	return ledCount*3 + maxOffsetSize
}

// maxOffsetSize is the largest encoded frame offset, including its length
// prefix.
const maxOffsetSize = 32

// Path returns the path of the capture.
func (r *Reader) Path() string { return r.path }

// Metadata returns the capture's Metadata.
func (r *Reader) Metadata() *Metadata { return r.md }

// Position returns the offset of the last frame read.
func (r *Reader) Position() time.Duration { return r.position }

// Reset rewinds the Reader to the beginning of the capture.
func (r *Reader) Reset() error {
	if err := r.Close(); err != nil {
		return err
	}

	fd, err := os.Open(filepath.Join(r.path, r.md.Compression.fileName()))
	if err != nil {
		return errors.Wrap(err, "opening frame file")
	}
	r.fd = fd

	if r.br == nil {
		r.br = bufio.NewReaderSize(fd, readBufferSize)
	} else {
		r.br.Reset(fd)
	}

	switch r.md.Compression {
	case CompressionSnappy:
		r.r = dataio.MakeReader(snappy.NewReader(r.br))
	default:
		r.r = r.br
	}
	r.position = 0
	return nil
}

// Next reads the next Frame. At the end of the capture, Next returns io.EOF.
//
// If frame is not nil, it will be reused.
func (r *Reader) Next(frame *Frame) (*Frame, error) {
	if r.fd == nil {
		return nil, errors.New("reader is closed")
	}

	data, _, err := r.dec.Read(r.r)
	if err != nil {
		return nil, err
	}

	br := bytes.NewReader(data)
	size, _, err := dataio.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading frame offset size")
	}
	if size > uint64(br.Len()) {
		return nil, errors.Errorf("frame offset size %d exceeds record", size)
	}
	start := len(data) - br.Len()
	end := start + int(size)

	var od duration.Duration
	if err := proto.Unmarshal(data[start:end], &od); err != nil {
		return nil, errors.Wrap(err, "decoding frame offset")
	}
	offset, err := ptypes.Duration(&od)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frame offset")
	}

	pixels := data[end:]
	if len(pixels) != r.md.LEDCount*3 {
		return nil, errors.Errorf("frame has %d bytes of pixel data, expected %d", len(pixels), r.md.LEDCount*3)
	}

	if frame == nil {
		frame = &Frame{}
	}
	frame.Offset = offset
	if cap(frame.Pixels) < r.md.LEDCount {
		frame.Pixels = make([]pixel.P, r.md.LEDCount)
	}
	frame.Pixels = frame.Pixels[:r.md.LEDCount]
	for i := range frame.Pixels {
		frame.Pixels[i] = pixel.P{Red: pixels[i*3], Green: pixels[i*3+1], Blue: pixels[i*3+2]}
	}

	r.position = frame.Offset
	return frame, nil
}

// Close closes the Reader's frame file. The Reader may be reopened with
// Reset.
func (r *Reader) Close() error {
	if r.fd == nil {
		return nil
	}
	fd := r.fd
	r.fd, r.r = nil, nil
	return fd.Close()
}
