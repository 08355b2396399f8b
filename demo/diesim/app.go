// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package diesim defines the logic for the "diesim" demo app.
//
// This app runs the die's firmware subsystems in a terminal. The animation
// controller drives a real APA102 strip driver over simulated GPIO pins, and
// every transfer is decoded off the wire and drawn to the screen. The
// keyboard stands in for the accelerometer and the battery, and PlaySound
// actions are played as tones.
//
// This demonstrates how to wire the controller, motion tracker, battery
// monitor and behavior rules together, and optionally how to expose the die
// to a companion app over a message Link, and how to capture and replay the
// frames it renders.
package diesim

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/anim/animfile"
	"github.com/danjacques/pixeldie/behavior"
	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/capture"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/settings"
	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/network"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

//go:embed defaults/animations.yaml
var defaultAnimations []byte

//go:embed defaults/rules.yaml
var defaultRules []byte

type options struct {
	board       string
	order       pixel.ChannelOrder
	animations  string
	rules       string
	listen      string
	id          uint
	capture     string
	compression capture.Compression
	replay      string
	loop        bool
	noSound     bool
	logFile     string
	logLevel    string
	settings    *settings.Settings
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.board, "board", "d20", "Board to simulate (d20 or d6).")
	fs.Var(&o.order, "order", "Channel order of the simulated strip.")
	fs.StringVar(&o.animations, "animations", "",
		"Path to an animation set YAML file. If empty, a built-in set is used.")
	fs.StringVar(&o.rules, "rules", "",
		"Path to a behavior rules YAML file. If empty, built-in rules are used.")
	fs.StringVar(&o.listen, "listen", "",
		fmt.Sprintf("If set, listen for app messages on this [host][:port] (default port %d).", message.DefaultPort))
	fs.UintVar(&o.id, "id", 1, "Die ID reported to apps.")
	fs.StringVar(&o.capture, "capture", "", "If set, capture rendered frames to this directory.")
	o.compression = capture.CompressionSnappy
	fs.Var(&o.compression, "capture-compression", "Compression to use for captured frames (none or snappy).")
	fs.StringVar(&o.replay, "replay", "", "If set, replay the capture in this directory instead of simulating.")
	fs.BoolVar(&o.loop, "loop", false, "Loop a replayed capture.")
	fs.BoolVar(&o.noSound, "no-sound", false, "Don't play tones for sound clips.")
	fs.StringVar(&o.logFile, "log-file", "", "If set, write logs to this file.")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error).")

	o.settings = settings.Default()
	o.settings.AddFlags(fs)
}

// Main is the main entry point.
func Main() {
	var opts options
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	opts.addFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if err := run(&opts); err != nil {
		log.Fatalf("Simulator failed: %s", err)
	}
}

func run(opts *options) error {
	logger := logging.Nop
	if opts.logFile != "" {
		zl, err := logging.NewZap(opts.logLevel, opts.logFile)
		if err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()
		logger = zl
	}

	b, err := board.Named(opts.board)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "creating screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "initializing screen")
	}
	defer screen.Fini()

	c, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.replay != "" {
		return runReplay(c, cancel, screen, opts, logger)
	}
	return runDie(c, cancel, screen, b, opts, logger)
}

func loadSet(opts *options, b *board.Board) (*anim.Set, error) {
	if opts.animations != "" {
		return animfile.LoadFile(opts.animations, b.LEDCount())
	}
	return animfile.Load(bytes.NewReader(defaultAnimations), b.LEDCount())
}

func loadRules(opts *options) ([]behavior.Rule, error) {
	if opts.rules != "" {
		return behavior.LoadRulesFile(opts.rules)
	}
	return behavior.LoadRules(bytes.NewReader(defaultRules))
}

func runDie(c context.Context, cancel context.CancelFunc, screen tcell.Screen, b *board.Board, opts *options, logger logging.L) error {
	set, err := loadSet(opts, b)
	if err != nil {
		return err
	}
	rules, err := loadRules(opts)
	if err != nil {
		return err
	}

	al := appLink{Logger: logger}
	if !opts.noSound {
		tp, err := newSpeakerTonePlayer()
		if err != nil {
			// Non-fatal; the simulator runs without sound.
			logger.Warnf("Sound is disabled: %s", err)
		} else {
			defer tp.Close()
			al.Tones = tp
		}
	}

	var cw *capture.Writer
	if opts.capture != "" {
		cw, err = capture.Create(opts.capture, b.LEDCount(), &capture.Config{
			Name:        fmt.Sprintf("diesim %s", b),
			Compression: opts.compression,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := cw.Close(); err != nil {
				logger.Errorf("Failed to close capture: %s", err)
			}
		}()
	}

	var s *sim
	d, err := newDie(&dieConfig{
		Board:    b,
		Settings: opts.settings,
		Set:      set,
		Rules:    rules,
		Order:    opts.order,
		Link:     &al,
		OnFrame: func(now int, frame []pixel.P) {
			if cw == nil {
				return
			}
			if err := cw.WriteFrame(now, frame); err != nil {
				logger.Warnf("Failed to capture frame: %s", err)
				return
			}
			s.captured.Add(1)
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var link *message.Link
	if opts.listen != "" {
		addr, err := network.ParseUDP4Address(opts.listen, message.DefaultPort)
		if err != nil {
			return err
		}
		conn, err := network.ListenUDP4(addr, 0)
		if err != nil {
			return errors.Wrapf(err, "listening on %s", addr)
		}

		link = &message.Link{
			Handler: &message.Dispatcher{
				ID:      uint8(opts.id),
				Player:  d.ctrl,
				Battery: d.battery,
				Motion:  d.tracker,
				Logger:  logging.Prefixed(logger, "dispatch"),
			},
			Logger: logging.Prefixed(logger, "link"),
		}
		link.Start(conn)
		defer link.Close()
		al.Link = link

		go func() { _ = link.Watch(c, message.DefaultPeerTimeout/10, d.behavior.OnConnection) }()
	}

	s = newSim(d, set, link)
	if cw != nil {
		s.captured.Store(0)
	}

	doneC := make(chan struct{})
	go func() {
		defer close(doneC)
		d.run(c)
	}()

	screenLoop(c, screen, s.view, s.handleKey)
	cancel()
	<-doneC
	return nil
}

func runReplay(c context.Context, cancel context.CancelFunc, screen tcell.Screen, opts *options, logger logging.L) error {
	r, err := capture.Open(opts.replay)
	if err != nil {
		return err
	}
	defer r.Close()

	md := r.Metadata()
	var leds ledState
	leds.setPowered(true)
	p := capture.Player{
		Sink:   &leds,
		Loop:   opts.loop,
		Logger: logging.Prefixed(logger, "replay"),
	}

	status := "playing"
	doneC := make(chan struct{})
	statusC := make(chan string, 1)
	go func() {
		defer close(doneC)
		switch err := p.Play(c, r); errors.Cause(err) {
		case nil:
			statusC <- "finished"
		case context.Canceled:
		default:
			statusC <- fmt.Sprintf("failed: %s", err)
		}
	}()

	frame := func() *view {
		select {
		case status = <-statusC:
		default:
		}
		shown, powered := leds.snapshot()
		return &view{
			Title:   fmt.Sprintf("pixeldie replay: %s", md.Name),
			LEDs:    shown,
			Powered: powered,
			Lines: []string{
				fmt.Sprintf("Capture:  %s", r.Path()),
				fmt.Sprintf("Frames:   %d over %s (%d LEDs, %s)", md.Frames, md.Duration(), md.LEDCount, md.Compression),
				fmt.Sprintf("Status:   %s (loop %v)", status, opts.loop),
			},
			Help: "q quit",
		}
	}
	onKey := func(k tcell.Key, ch rune) bool {
		return !(k == tcell.KeyEscape || k == tcell.KeyCtrlC || (k == tcell.KeyRune && ch == 'q'))
	}

	screenLoop(c, screen, frame, onKey)
	cancel()
	<-doneC
	return nil
}
