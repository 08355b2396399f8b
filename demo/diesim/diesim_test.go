// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package diesim

import (
	"bytes"
	"testing"
	"time"

	"github.com/danjacques/pixeldie/anim/animfile"
	"github.com/danjacques/pixeldie/behavior"
	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/settings"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

type fakeLink struct {
	connected bool
	sent      []message.Message
}

func (fl *fakeLink) Connected() bool { return fl.connected }

func (fl *fakeLink) Send(msg message.Message) error {
	fl.sent = append(fl.sent, msg)
	return nil
}

func newTestDie(b *board.Board, link behavior.Link) *die {
	set, err := animfile.Load(bytes.NewReader(defaultAnimations), b.LEDCount())
	Expect(err).ToNot(HaveOccurred())
	rules, err := behavior.LoadRules(bytes.NewReader(defaultRules))
	Expect(err).ToNot(HaveOccurred())

	d, err := newDie(&dieConfig{
		Board:    b,
		Settings: settings.Default(),
		Set:      set,
		Rules:    rules,
		Link:     link,
	})
	Expect(err).ToNot(HaveOccurred())
	return d
}

var _ = Describe("cycler", func() {
	It("fades each channel combination up and down", func() {
		c := cycler{Step: 0x80}

		var seq []pixel.P
		for i := 0; i < 6; i++ {
			seq = append(seq, c.Next())
		}
		Expect(seq).To(Equal([]pixel.P{
			{},
			{Red: 0x80},
			{Red: 0xFF},
			{Red: 0x7F},
			{},
			{Green: 0x80},
		}))
	})

	It("restarts after the last combination", func() {
		var c cycler
		for i := 0; i < 6*0x200; i++ {
			c.Next()
		}
		c.Next()
		Expect(c.Next()).To(Equal(pixel.P{Red: 1}))
	})
})

var _ = Describe("breather", func() {
	It("scales its colour along the sine table", func() {
		b := breather{Color: pixel.P{Red: 0xFF, Green: 0xFF, Blue: 0xFF}, Step: 64}

		var seq []pixel.P
		for i := 0; i < 5; i++ {
			seq = append(seq, b.Next())
		}
		Expect(seq).To(Equal([]pixel.P{
			{Red: 128, Green: 128, Blue: 128},
			{Red: 0xFF, Green: 0xFF, Blue: 0xFF},
			{Red: 128, Green: 128, Blue: 128},
			{},
			{Red: 128, Green: 128, Blue: 128},
		}))
	})

	It("keeps channel ratios", func() {
		b := breather{Color: pixel.P{Red: 0xFF, Green: 0xA0}, Step: 64}
		b.Next()
		Expect(b.Next()).To(Equal(pixel.P{Red: 0xFF, Green: 0xA0}))
	})
})

var _ = Describe("Sounds", func() {
	DescribeTable("maps clips to semitones",
		func(clip uint32, freq float64) {
			Expect(clipFrequency(clip)).To(BeNumerically("~", freq, 1e-9))
		},
		Entry("clip 0", uint32(0), 220.0),
		Entry("an octave up", uint32(12), 440.0),
		Entry("wrapping", uint32(24), 220.0),
		Entry("high bytes", uint32(0x0120), 220.0),
	)

	It("plays a tone of the configured duration", func() {
		var played []beep.Streamer
		tp := tonePlayer{
			sr:       beep.SampleRate(8000),
			duration: 100 * time.Millisecond,
			play:     func(s beep.Streamer) { played = append(played, s) },
		}
		Expect(tp.PlayClip(3)).To(Succeed())
		Expect(played).To(HaveLen(1))

		total := 0
		buf := make([][2]float64, 128)
		for {
			n, ok := played[0].Stream(buf)
			total += n
			if !ok {
				break
			}
		}
		Expect(total).To(Equal(800))
	})

	It("forwards messages only to a connected app", func() {
		fl := fakeLink{}
		al := appLink{Link: &fl}
		Expect(al.Connected()).To(BeFalse())

		Expect(al.Send(&message.PlaySound{ClipID: 1})).To(Succeed())
		Expect(fl.sent).To(BeEmpty())

		fl.connected = true
		Expect(al.Connected()).To(BeTrue())
		Expect(al.Send(&message.PlaySound{ClipID: 2})).To(Succeed())
		Expect(fl.sent).To(Equal([]message.Message{&message.PlaySound{ClipID: 2}}))
	})

	It("is connected whenever it can play tones", func() {
		al := appLink{Tones: &tonePlayer{sr: 8000, duration: time.Millisecond, play: func(beep.Streamer) {}}}
		Expect(al.Connected()).To(BeTrue())
		Expect(al.Send(&message.PlaySound{ClipID: 5})).To(Succeed())
	})
})

var _ = Describe("Inputs", func() {
	Context("accelerometer", func() {
		var a *accelerometer
		b := board.D6()

		BeforeEach(func() {
			a = newAccelerometer(b, 1)
		})

		It("rests on the selected face", func() {
			a.SetFace(-1)
			Expect(a.Face()).To(Equal(5))
			Expect(a.Sample(0)).To(Equal(b.FaceNormal(5)))

			a.SetFace(8)
			Expect(a.Face()).To(Equal(2))
		})

		It("tilts off the face", func() {
			a.SetFace(1)
			Expect(a.ToggleTilt()).To(BeTrue())

			v := a.Sample(0)
			Expect(b.ClosestFace(v)).To(Equal(1))
			Expect(v.Normalized().Dot(b.FaceNormal(1))).To(BeNumerically("<", motion.OnFaceAlignment))
		})

		It("lands on a face after a roll", func() {
			a.Sample(10 * time.Millisecond)
			a.Roll(100 * time.Millisecond)

			a.Sample(50 * time.Millisecond)
			Expect(a.Rolling()).To(BeTrue())

			v := a.Sample(110 * time.Millisecond)
			Expect(a.Rolling()).To(BeFalse())
			Expect(v).To(Equal(b.FaceNormal(a.Face())))
		})
	})

	Context("cell", func() {
		It("drains, charges and clamps", func() {
			c := cell{volts: 3.0}

			v, err := c.Voltage()
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(BeNumerically("~", 3.0-cellDrain, 1e-9))

			Expect(c.ToggleCharger()).To(BeTrue())
			v, _ = c.Voltage()
			Expect(v).To(BeNumerically("~", 3.0-cellDrain+cellChargeInc, 1e-9))

			c.Adjust(10)
			v, charging := c.Snapshot()
			Expect(v).To(Equal(cellMax))
			Expect(charging).To(BeTrue())

			c.Adjust(-10)
			v, _ = c.Snapshot()
			Expect(v).To(Equal(cellMin))
		})
	})
})

var _ = Describe("Simulated die", func() {
	It("renders rule animations through the strip wire", func() {
		fl := fakeLink{connected: true}
		d := newTestDie(board.D6(), &fl)

		// The first sample lands the die on face 0, which fires the on_face
		// rules.
		d.sample(0)
		Expect(d.tracker.State()).To(Equal(motion.StateOnFace))
		Expect(fl.sent).To(Equal([]message.Message{&message.PlaySound{ClipID: 0x0203}}))

		d.ctrl.Tick(0)
		heat, playing := d.stats()
		Expect(heat).To(Equal(0.0))
		Expect(playing).To(Equal(2))

		leds, powered := d.leds.snapshot()
		Expect(powered).To(BeTrue())
		Expect(leds).To(HaveLen(6))
		Expect(leds[0].IsBlack()).To(BeFalse())
		Expect(leds[1]).To(Equal(pixel.P{Blue: 0xFF}))
		Expect(leds[3]).To(Equal(pixel.Black))
	})

	Context("keys", func() {
		var (
			d *die
			s *sim
		)

		BeforeEach(func() {
			d = newTestDie(board.DefaultD20(), nil)
			s = newSim(d, d.ctrl.Set, nil)
		})

		It("moves between faces", func() {
			Expect(s.handleKey(tcell.KeyLeft, 0)).To(BeTrue())
			Expect(d.accel.Face()).To(Equal(19))
			Expect(s.handleKey(tcell.KeyRight, 0)).To(BeTrue())
			Expect(d.accel.Face()).To(Equal(0))
			Expect(s.handleKey(tcell.KeyRune, '7')).To(BeTrue())
			Expect(d.accel.Face()).To(Equal(7))
		})

		It("controls the battery", func() {
			before, _ := d.cell.Snapshot()
			s.handleKey(tcell.KeyRune, '+')
			after, _ := d.cell.Snapshot()
			Expect(after).To(BeNumerically("~", before+voltageStep, 1e-9))

			s.handleKey(tcell.KeyRune, 'c')
			_, charging := d.cell.Snapshot()
			Expect(charging).To(BeTrue())
		})

		It("plays animations in turn", func() {
			s.handleKey(tcell.KeyRune, 'a')
			s.handleKey(tcell.KeyRune, 'a')
			d.ctrl.Tick(0)

			_, playing := d.stats()
			Expect(playing).To(Equal(2))

			s.handleKey(tcell.KeyRune, 's')
			d.ctrl.Tick(10)
			_, playing = d.stats()
			Expect(playing).To(Equal(0))
		})

		It("runs the colour test", func() {
			s.handleKey(tcell.KeyRune, 'f')
			Expect(s.colorTest).To(BeTrue())

			s.view()
			s.view()
			d.ctrl.Tick(0)
			leds, _ := d.leds.snapshot()
			Expect(leds[0]).To(Equal(pixel.P{Red: colorTestInc}))
		})

		It("breathes", func() {
			s.handleKey(tcell.KeyRune, 'f')
			s.handleKey(tcell.KeyRune, 'b')
			Expect(s.breathing).To(BeTrue())
			Expect(s.colorTest).To(BeFalse())

			s.view()
			d.ctrl.Tick(0)
			leds, _ := d.leds.snapshot()
			Expect(leds[0]).To(Equal(pixel.P{Red: 128, Green: 80}))

			s.handleKey(tcell.KeyRune, 's')
			Expect(s.breathing).To(BeFalse())
		})

		It("reports status", func() {
			v := s.view()
			Expect(v.Title).To(ContainSubstring("D20"))
			Expect(v.Lines[0]).To(ContainSubstring("unknown"))
			Expect(v.Help).To(Equal(simHelp))
		})

		DescribeTable("quits",
			func(k tcell.Key, r rune) {
				Expect(s.handleKey(k, r)).To(BeFalse())
			},
			Entry("q", tcell.KeyRune, 'q'),
			Entry("escape", tcell.KeyEscape, rune(0)),
			Entry("ctrl-c", tcell.KeyCtrlC, rune(0)),
		)
	})
})

var _ = Describe("Display", func() {
	It("draws LEDs and status", func() {
		screen := tcell.NewSimulationScreen("UTF-8")
		Expect(screen.Init()).To(Succeed())
		defer screen.Fini()
		screen.SetSize(80, 24)

		draw(screen, &view{
			Title:   "title",
			LEDs:    []pixel.P{{Red: 0xFF}, {}},
			Powered: true,
			Lines:   []string{"status"},
			Help:    "help",
		})

		x, y := ledPosition(0)
		r, _, style, _ := screen.GetContent(x, y)
		fg, _, _ := style.Decompose()
		Expect(r).To(Equal('█'))
		Expect(fg).To(Equal(tcell.NewRGBColor(0xFF, 0, 0)))

		x, y = ledPosition(1)
		r, _, _, _ = screen.GetContent(x, y)
		Expect(r).To(Equal('·'))

		r, _, _, _ = screen.GetContent(0, 0)
		Expect(r).To(Equal('t'))
		r, _, _, _ = screen.GetContent(0, ledTop+3)
		Expect(r).To(Equal('s'))
		r, _, _, _ = screen.GetContent(0, 23)
		Expect(r).To(Equal('h'))
	})
})

func TestDiesim(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing diesim")
}
