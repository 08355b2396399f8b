// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"math"
	"time"

	"github.com/danjacques/pixeldie/behavior"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/support/logging"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const (
	toneSampleRate = beep.SampleRate(44100)
	toneDuration   = 150 * time.Millisecond

	// toneBase is the frequency of clip 0. Each further clip is a semitone
	// higher, over two octaves.
	toneBase  = 220.0
	toneSteps = 24
)

// clipFrequency returns the tone frequency for a sound clip.
func clipFrequency(clip uint32) float64 {
	return toneBase * math.Pow(2, float64(clip%toneSteps)/12)
}

// tonePlayer stands in for the companion app's sound clips, playing a short
// sine tone per clip.
type tonePlayer struct {
	sr       beep.SampleRate
	duration time.Duration
	play     func(s beep.Streamer)
}

// newSpeakerTonePlayer initializes the speaker and returns a tonePlayer that
// plays through it. Close must be called when finished.
func newSpeakerTonePlayer() (*tonePlayer, error) {
	if err := speaker.Init(toneSampleRate, toneSampleRate.N(time.Second/10)); err != nil {
		return nil, errors.Wrap(err, "initializing speaker")
	}
	return &tonePlayer{
		sr:       toneSampleRate,
		duration: toneDuration,
		play:     func(s beep.Streamer) { speaker.Play(s) },
	}, nil
}

// PlayClip plays the tone for clip.
func (tp *tonePlayer) PlayClip(clip uint32) error {
	sine, err := generators.SineTone(tp.sr, clipFrequency(clip))
	if err != nil {
		return errors.Wrapf(err, "generating tone for clip %08x", clip)
	}
	tp.play(beep.Take(tp.sr.N(tp.duration), sine))
	return nil
}

// Close releases the speaker.
func (tp *tonePlayer) Close() { speaker.Close() }

// appLink plays sounds locally and forwards every message to a connected
// app.
type appLink struct {
	// Tones, if not nil, plays PlaySound clips.
	Tones *tonePlayer
	// Link, if not nil, is the app message link.
	Link behavior.Link

	Logger logging.L
}

var _ behavior.Link = (*appLink)(nil)

func (al *appLink) Connected() bool {
	return al.Tones != nil || (al.Link != nil && al.Link.Connected())
}

func (al *appLink) Send(msg message.Message) error {
	if ps, ok := msg.(*message.PlaySound); ok && al.Tones != nil {
		if err := al.Tones.PlayClip(ps.ClipID); err != nil {
			logging.Must(al.Logger).Warnf("Could not play clip: %s", err)
		}
	}

	if al.Link == nil || !al.Link.Connected() {
		return nil
	}
	return al.Link.Send(msg)
}
