// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package capture

import (
	"bufio"
	"io"
	"os"
	"time"

	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/support/dataio"
	"github.com/danjacques/pixeldie/support/recordio"
	"github.com/danjacques/pixeldie/support/stagingdir"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// writeBufferSize is the size of the buffered frame file writer.
const writeBufferSize = 64 * 1024

// Config configures a capture Writer.
type Config struct {
	// Name is the display name to record in the capture's metadata.
	Name string

	// Compression is the compression to use for frame data. If empty,
	// CompressionSnappy will be used.
	Compression Compression

	// TempDir, if not empty, is the directory in which to stage the capture.
	// If empty, the capture is staged next to its destination.
	TempDir string

	// NowFunc, if not nil, is the function to use to get the current time. If
	// nil, time.Now will be used.
	NowFunc func() time.Time
}

func (cfg *Config) now() time.Time {
	if cfg.NowFunc != nil {
		return cfg.NowFunc()
	}
	return time.Now()
}

// Writer writes frames to a capture.
//
// Writer is not safe for concurrent use.
type Writer struct {
	md       Metadata
	destPath string

	stagingDir *stagingdir.D
	fd         *os.File
	bw         *bufio.Writer
	snappyW    *snappy.Writer
	w          io.Writer

	enc       recordio.Encoder
	offsetBuf []byte
	frameBuf  []byte

	hasFirst bool
	first    int
	last     time.Duration
}

// Create creates a new capture Writer which will be committed to path when
// closed. Each frame must contain exactly ledCount pixels.
func Create(path string, ledCount int, cfg *Config) (*Writer, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if ledCount <= 0 {
		return nil, errors.Errorf("invalid LED count %d", ledCount)
	}

	comp := cfg.Compression
	if comp == "" {
		comp = CompressionSnappy
	}
	if err := comp.Set(string(comp)); err != nil {
		return nil, err
	}

	created, err := ptypes.TimestampProto(cfg.now())
	if err != nil {
		return nil, errors.Wrap(err, "invalid creation time")
	}

	sd, err := stagingdir.New(cfg.TempDir, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if sd != nil {
			_ = sd.Destroy()
		}
	}()

	fd, err := os.Create(sd.Path(comp.fileName()))
	if err != nil {
		return nil, errors.Wrap(err, "creating frame file")
	}

	w := Writer{
		md: Metadata{
			Version:     metadataVersion,
			Name:        cfg.Name,
			Created:     created,
			LEDCount:    ledCount,
			Compression: comp,
			LastOffset:  ptypes.DurationProto(0),
		},
		destPath:   path,
		stagingDir: sd,
		fd:         fd,
		bw:         bufio.NewWriterSize(fd, writeBufferSize),
		frameBuf:   make([]byte, 0, ledCount*3),
	}
	w.w = w.bw
	if comp == CompressionSnappy {
		w.snappyW = snappy.NewBufferedWriter(w.bw)
		w.w = w.snappyW
	}

	sd = nil // Owned by w.
	return &w, nil
}

// Path returns the destination path of the capture.
func (w *Writer) Path() string { return w.destPath }

// NumFrames returns the number of frames written so far.
func (w *Writer) NumFrames() int64 { return w.md.Frames }

// NumBytes returns the number of uncompressed bytes written so far.
func (w *Writer) NumBytes() int64 { return w.md.Bytes }

// Duration returns the offset of the last frame written.
func (w *Writer) Duration() time.Duration { return w.last }

// WriteFrame writes a single frame, shown at time now (in milliseconds).
//
// Frame times must be non-decreasing.
func (w *Writer) WriteFrame(now int, frame []pixel.P) error {
	if w.fd == nil {
		return errors.New("writer is closed")
	}
	if len(frame) != w.md.LEDCount {
		return errors.Errorf("frame has %d pixels, expected %d", len(frame), w.md.LEDCount)
	}

	if !w.hasFirst {
		w.first, w.hasFirst = now, true
	}
	offset := time.Duration(now-w.first) * time.Millisecond
	if offset < w.last {
		return errors.Errorf("frame time %d precedes previous frame", now)
	}

	offsetProto := ptypes.DurationProto(offset)
	offsetData, err := proto.Marshal(offsetProto)
	if err != nil {
		return errors.Wrap(err, "encoding frame offset")
	}

	var ob offsetWriter
	ob.buf = w.offsetBuf[:0]
	if _, err := dataio.WriteUvarint(&ob, uint64(len(offsetData))); err != nil {
		return err
	}
	ob.buf = append(ob.buf, offsetData...)
	w.offsetBuf = ob.buf

	w.frameBuf = w.frameBuf[:0]
	for _, p := range frame {
		w.frameBuf = append(w.frameBuf, p.Red, p.Green, p.Blue)
	}

	amt, err := w.enc.Write(w.w, ob.buf, w.frameBuf)
	if err != nil {
		return errors.Wrap(err, "writing frame")
	}

	w.md.Frames++
	w.md.Bytes += int64(amt)
	w.md.LastOffset = offsetProto
	w.last = offset
	return nil
}

// Close finalizes the capture and moves it into place.
//
// If no frames were written, nothing is committed.
func (w *Writer) Close() error {
	if w.fd == nil {
		return nil
	}
	defer func() {
		_ = w.stagingDir.Destroy()
	}()

	err := w.closeFile()
	w.fd = nil
	if err != nil {
		return errors.Wrap(err, "closing frame file")
	}

	if w.md.Frames == 0 {
		return nil
	}

	if err := w.md.write(w.stagingDir.Path()); err != nil {
		return errors.Wrap(err, "writing metadata file")
	}
	return w.stagingDir.Commit(w.destPath)
}

func (w *Writer) closeFile() (err error) {
	defer func() {
		closeErr := w.fd.Close()
		if err == nil {
			err = closeErr
		}
	}()

	if w.snappyW != nil {
		if err = w.snappyW.Close(); err != nil {
			return
		}
	}
	return w.bw.Flush()
}

// offsetWriter appends to a reusable buffer.
type offsetWriter struct {
	buf []byte
}

func (ow *offsetWriter) Write(d []byte) (int, error) {
	ow.buf = append(ow.buf, d...)
	return len(d), nil
}
