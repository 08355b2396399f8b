// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"context"
	"time"

	"github.com/danjacques/pixeldie/pixel"

	"github.com/gdamore/tcell/v2"
)

const (
	// frameInterval is the display refresh period.
	frameInterval = 33 * time.Millisecond

	ledsPerRow = 10
	ledWidth   = 4
	ledLeft    = 2
	ledTop     = 2
)

var (
	titleStyle = tcell.StyleDefault.Bold(true)
	textStyle  = tcell.StyleDefault
	helpStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	offStyle   = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
)

// view is everything drawn in a single display frame.
type view struct {
	Title   string
	LEDs    []pixel.P
	Powered bool
	Lines   []string
	Help    string
}

func ledStyle(p pixel.P) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(p.Red), int32(p.Green), int32(p.Blue)))
}

// ledPosition returns the screen cell of LED i's left edge.
func ledPosition(i int) (x, y int) {
	return ledLeft + (i%ledsPerRow)*ledWidth, ledTop + (i/ledsPerRow)*2
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// draw renders v to s.
func draw(s tcell.Screen, v *view) {
	s.Clear()
	drawText(s, 0, 0, titleStyle, v.Title)

	for i, p := range v.LEDs {
		x, y := ledPosition(i)
		if p.IsBlack() || !v.Powered {
			drawText(s, x, y, offStyle, "··")
			continue
		}
		drawText(s, x, y, ledStyle(p), "██")
	}

	rows := (len(v.LEDs) + ledsPerRow - 1) / ledsPerRow
	y := ledTop + rows*2 + 1
	for _, line := range v.Lines {
		drawText(s, 0, y, textStyle, line)
		y++
	}

	_, h := s.Size()
	drawText(s, 0, h-1, helpStyle, v.Help)
	s.Show()
}

// screenLoop redraws s every frameInterval and feeds it key events until c
// is cancelled or onKey returns false.
//
// frame is called before each redraw and returns the view to draw.
func screenLoop(c context.Context, s tcell.Screen, frame func() *view, onKey func(k tcell.Key, r rune) bool) {
	eventC := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				// The screen has been finalized.
				return
			}
			eventC <- ev
		}
	}()

	t := time.NewTicker(frameInterval)
	defer t.Stop()

	for {
		select {
		case <-c.Done():
			return

		case ev := <-eventC:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !onKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				s.Sync()
			}

		case <-t.C:
			draw(s, frame())
		}
	}
}
