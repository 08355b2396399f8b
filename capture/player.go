// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package capture

import (
	"context"
	"io"
	"time"

	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/support/logging"

	"github.com/pkg/errors"
)

// Sink receives played-back frames.
//
// controller.Strip satisfies Sink.
type Sink interface {
	SetPixels(pixels []pixel.P)
	Show() error
}

// Player plays a capture back to a Sink.
//
// A Player's exported fields must not be changed during playback.
type Player struct {
	// Sink receives all frames. It must not be nil.
	Sink Sink

	// Loop, if true, restarts the capture when it finishes.
	Loop bool

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	// MaxLagAge is the maximum amount of time that a frame may be behind
	// schedule before it is dropped. If zero, frames are never dropped.
	MaxLagAge time.Duration

	// Wait, if not nil, blocks for d or until c is cancelled. If nil, a timer
	// is used.
	Wait func(c context.Context, d time.Duration) error

	// NowFunc, if not nil, returns the current time. If nil, time.Now is used.
	NowFunc func() time.Time
}

// Play plays r to the Sink, blocking until the capture finishes or c is
// cancelled. Play does not close r.
func (p *Player) Play(c context.Context, r *Reader) error {
	logger := logging.Must(p.Logger)

	var frame Frame
	for {
		if err := p.playOnce(c, r, &frame, logger); err != nil {
			return err
		}
		if !p.Loop {
			return nil
		}

		logger.Debugf("Looping capture %q.", r.Path())
		if err := r.Reset(); err != nil {
			return errors.Wrap(err, "resetting capture")
		}
	}
}

func (p *Player) playOnce(c context.Context, r *Reader, frame *Frame, logger logging.L) error {
	start := p.now()
	for {
		if _, err := r.Next(frame); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "reading frame")
		}

		delay := frame.Offset - p.now().Sub(start)
		if p.MaxLagAge > 0 && -delay > p.MaxLagAge {
			logger.Debugf("Dropping frame at %s (%s behind).", frame.Offset, -delay)
			continue
		}
		if delay > 0 {
			if err := p.wait(c, delay); err != nil {
				return err
			}
		}

		p.Sink.SetPixels(frame.Pixels)
		if err := p.Sink.Show(); err != nil {
			logger.Warnf("Failed to show frame at %s: %s", frame.Offset, err)
		}
	}
}

func (p *Player) now() time.Time {
	if p.NowFunc != nil {
		return p.NowFunc()
	}
	return time.Now()
}

func (p *Player) wait(c context.Context, d time.Duration) error {
	if p.Wait != nil {
		return p.Wait(c, d)
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-c.Done():
		return c.Err()
	case <-t.C:
		return nil
	}
}
