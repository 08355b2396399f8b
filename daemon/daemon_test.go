// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package daemon

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/network"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const testAnimations = `
palette: ["#000000", "#FFFFFF"]
animations:
  - name: hello
    duration: 500
    event: hello
    tracks:
      - {led: 0, keyframes: [{time: 0, color: 1}, {time: 500, color: 0}]}
`

const testRules = `
rules:
  - event: rolling
    actions:
      - play_sound: {clip: 7}
`

type fakeSender struct {
	datagrams [][]byte
	err       error
}

func (fs *fakeSender) SendDatagram(b []byte) error {
	if fs.err != nil {
		return fs.err
	}
	fs.datagrams = append(fs.datagrams, append([]byte(nil), b...))
	return nil
}

func (fs *fakeSender) MaxDatagramSize() int { return 1024 }
func (fs *fakeSender) Close() error         { return nil }

type fakeMotion struct {
	state motion.State
	face  int
}

func (fm *fakeMotion) State() motion.State { return fm.state }
func (fm *fakeMotion) CurrentFace() int    { return fm.face }

type fakeVoltage float64

func (fv fakeVoltage) Voltage() (float64, error) { return float64(fv), nil }

var _ = Describe("Daemon", func() {
	var (
		tdir string
		opts *Options
	)

	BeforeEach(func() {
		var err error
		tdir, err = os.MkdirTemp("", "daemon_test")
		Expect(err).ToNot(HaveOccurred())

		opts = DefaultOptions()
		opts.Animations = filepath.Join(tdir, "animations.yaml")
		Expect(os.WriteFile(opts.Animations, []byte(testAnimations), 0644)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	Context("build", func() {
		It("requires an animation set", func() {
			opts.Animations = ""
			_, err := build(opts, board.D6(), logging.Nop)
			Expect(err).To(HaveOccurred())
		})

		It("wires the die without a battery", func() {
			d, err := build(opts, board.D6(), logging.Nop)
			Expect(err).ToNot(HaveOccurred())

			Expect(d.battery).To(BeNil())
			Expect(d.strip.Count).To(Equal(6))
			Expect(d.ctrl.Strip).To(BeIdenticalTo(d.strip))
			Expect(d.behavior.Executor.Link).To(BeIdenticalTo(d.link))
			Expect(d.behavior.Rules).To(BeEmpty())
			Expect(d.strip.OnPowerChange).To(BeNil())
		})

		It("loads rules and wires the battery", func() {
			opts.Rules = filepath.Join(tdir, "rules.yaml")
			Expect(os.WriteFile(opts.Rules, []byte(testRules), 0644)).To(Succeed())
			opts.Battery = filepath.Join(tdir, "voltage_now")

			d, err := build(opts, board.DefaultD20(), logging.Nop)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.behavior.Rules).To(HaveLen(1))
			Expect(d.battery).ToNot(BeNil())
			Expect(d.strip.OnPowerChange).ToNot(BeNil())
		})

		It("rejects an animation set that does not fit the board", func() {
			Expect(os.WriteFile(opts.Animations, []byte(`
animations:
  - name: far
    duration: 10
    tracks: [{led: 7, keyframes: [{time: 0, color: 0}]}]
`), 0644)).To(Succeed())

			_, err := build(opts, board.D6(), logging.Nop)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("reporter", func() {
		decode := func(b []byte) message.Message {
			msg, err := message.ReadMessage(bytes.NewReader(b))
			Expect(err).ToNot(HaveOccurred())
			return msg
		}

		It("reports state and battery level", func() {
			var fs fakeSender
			r := reporter{
				Sender:  &fs,
				Motion:  &fakeMotion{state: motion.StateRolling, face: 3},
				Battery: fakeVoltage(3.5),
			}
			r.report()

			Expect(fs.datagrams).To(HaveLen(2))
			Expect(decode(fs.datagrams[0])).To(Equal(&message.DieState{State: uint8(motion.StateRolling), Face: 3}))
			Expect(decode(fs.datagrams[1])).To(Equal(&message.BatteryLevel{Level: 3.5}))
		})

		It("reports an unknown face as any face", func() {
			var fs fakeSender
			r := reporter{Sender: &fs, Motion: &fakeMotion{face: -1}}
			r.report()

			Expect(fs.datagrams).To(HaveLen(1))
			Expect(decode(fs.datagrams[0])).To(Equal(&message.DieState{Face: message.AnyFace}))
		})

		It("is built before anything runs", func() {
			d, err := build(opts, board.D6(), logging.Nop)
			Expect(err).ToNot(HaveOccurred())

			opts.Report = "127.0.0.1:70000"
			_, err = newReporter(opts, d, logging.Nop)
			Expect(err).To(HaveOccurred())

			opts.Report = "127.0.0.1:9999"
			r, err := newReporter(opts, d, logging.Nop)
			Expect(err).ToNot(HaveOccurred())
			defer r.Sender.Close()

			Expect(r.Sender).To(BeAssignableToTypeOf(&network.ResilientDatagramSender{}))
			Expect(r.Motion).To(BeIdenticalTo(d.tracker))
			Expect(r.Battery).To(BeNil())
			Expect(r.Interval).To(Equal(DefaultReportInterval))
		})

		It("logs send failures", func() {
			var rec logging.Recorder
			fs := fakeSender{err: fmt.Errorf("unreachable")}
			r := reporter{Sender: &fs, Battery: fakeVoltage(4), Logger: &rec}
			r.report()

			Expect(fs.datagrams).To(BeEmpty())
			Expect(rec.Count(logging.LevelDebug)).To(Equal(1))
		})
	})

	It("serves metrics", func() {
		srv, addr, err := serveMetrics("127.0.0.1:0", logging.Nop)
		Expect(err).ToNot(HaveOccurred())
		defer srv.Close()

		Eventually(func() string {
			resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
			if err != nil {
				return ""
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return string(body)
		}).Should(ContainSubstring("controller_ticks"))
	})
})

func TestDaemon(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing daemon")
}
