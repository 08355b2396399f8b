// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"fmt"
	"sync/atomic"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/pixel"

	"github.com/gdamore/tcell/v2"
)

const (
	voltageStep  = 0.1
	colorTestInc = 8
	breatheStep  = 4
)

const simHelp = "←/→ face  0-9 face  r roll  t tilt  +/- volts  c charger  a anim  s stop  f colour test  b breathe  q quit"

// sim connects the keyboard and display to a simulated die.
//
// Its methods are called from the display loop.
type sim struct {
	die  *die
	set  *anim.Set
	link *message.Link

	// captured is the number of frames written to the capture, or -1 if
	// there is no capture.
	captured atomic.Int64

	colorTest bool
	cycler    cycler
	breathing bool
	breather  breather
	nextAnim  int
	lastKey   string
}

func newSim(d *die, set *anim.Set, link *message.Link) *sim {
	s := sim{
		die:    d,
		set:    set,
		link:   link,
		cycler: cycler{Step: colorTestInc},
		breather: breather{
			Color: pixel.P{Red: 0xFF, Green: 0xA0},
			Step:  breatheStep,
		},
	}
	s.captured.Store(-1)
	return &s
}

// handleKey applies a key press. It returns false if the simulator should
// exit.
func (s *sim) handleKey(k tcell.Key, r rune) bool {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		s.die.accel.SetFace(s.die.accel.Face() - 1)
		s.lastKey = fmt.Sprintf("face %d", s.die.accel.Face())
		return true
	case tcell.KeyRight:
		s.die.accel.SetFace(s.die.accel.Face() + 1)
		s.lastKey = fmt.Sprintf("face %d", s.die.accel.Face())
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch {
	case r == 'q':
		return false

	case r >= '0' && r <= '9':
		s.die.accel.SetFace(int(r - '0'))
		s.lastKey = fmt.Sprintf("face %d", s.die.accel.Face())

	case r == 'r':
		s.die.accel.Roll(rollDuration)
		s.lastKey = "roll"

	case r == 't':
		if s.die.accel.ToggleTilt() {
			s.lastKey = "tilted"
		} else {
			s.lastKey = "level"
		}

	case r == '+' || r == '=':
		s.die.cell.Adjust(voltageStep)
		s.lastKey = "volts up"

	case r == '-':
		s.die.cell.Adjust(-voltageStep)
		s.lastKey = "volts down"

	case r == 'c':
		if s.die.cell.ToggleCharger() {
			s.lastKey = "charger attached"
		} else {
			s.lastKey = "charger detached"
		}

	case r == 'a':
		if n := s.set.Count(); n > 0 {
			idx := s.nextAnim % n
			s.nextAnim = idx + 1
			face := s.die.tracker.CurrentFace()
			if face < 0 {
				face = 0
			}
			s.die.ctrl.Play(idx, face, false)
			s.lastKey = fmt.Sprintf("play %s", s.set.Animations[idx])
		}

	case r == 's':
		s.colorTest, s.breathing = false, false
		s.die.ctrl.StopAll()
		s.lastKey = "stop all"

	case r == 'f':
		s.colorTest, s.breathing = !s.colorTest, false
		if !s.colorTest {
			s.die.ctrl.Fill(pixel.Black)
		}
		s.lastKey = fmt.Sprintf("colour test %v", s.colorTest)

	case r == 'b':
		s.breathing, s.colorTest = !s.breathing, false
		if !s.breathing {
			s.die.ctrl.Fill(pixel.Black)
		}
		s.lastKey = fmt.Sprintf("breathe %v", s.breathing)
	}
	return true
}

// view advances the colour test or breathing, if running, and returns the
// current view.
func (s *sim) view() *view {
	switch {
	case s.colorTest:
		s.die.ctrl.Fill(s.cycler.Next())
	case s.breathing:
		s.die.ctrl.Fill(s.breather.Next())
	}

	leds, powered := s.die.leds.snapshot()
	return &view{
		Title:   fmt.Sprintf("pixeldie simulator: %s", s.die.board),
		LEDs:    leds,
		Powered: powered,
		Lines:   s.statusLines(),
		Help:    simHelp,
	}
}

func (s *sim) statusLines() []string {
	heat, playing := s.die.stats()
	volts, charger := s.die.cell.Snapshot()

	lines := []string{
		fmt.Sprintf("Motion:   %-9s face %d (resting on %d)",
			s.die.tracker.State(), s.die.tracker.CurrentFace(), s.die.accel.Face()),
		fmt.Sprintf("Battery:  %-9s %.2fV (charger %v)", s.die.battery.State(), volts, charger),
		fmt.Sprintf("Anims:    %d playing, heat %.2f", playing, heat),
	}

	if s.link != nil {
		peer := "none"
		if p := s.link.Peer(); p != nil {
			peer = p.String()
		}
		lines = append(lines, fmt.Sprintf("Link:     %s (peer %s)", s.link.Addr(), peer))
	}
	if n := s.captured.Load(); n >= 0 {
		lines = append(lines, fmt.Sprintf("Capture:  %d frame(s)", n))
	}
	if s.lastKey != "" {
		lines = append(lines, "", "> "+s.lastKey)
	}
	return lines
}
