// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package daemon runs the die on a Linux host.
//
// The strip is driven over the host's GPIO pins through periph. Motion is
// read from an IIO accelerometer and the battery from a power supply voltage
// file, when available. Apps talk to the die over a UDP message Link, and
// metrics are exported over HTTP.
package daemon

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/danjacques/pixeldie/anim/animfile"
	"github.com/danjacques/pixeldie/battery"
	"github.com/danjacques/pixeldie/behavior"
	"github.com/danjacques/pixeldie/board"
	"github.com/danjacques/pixeldie/controller"
	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/motion"
	"github.com/danjacques/pixeldie/pixel"
	"github.com/danjacques/pixeldie/settings"
	"github.com/danjacques/pixeldie/strip"
	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/network"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"periph.io/x/host/v3"
)

const (
	// DefaultSampleInterval is the default accelerometer sample period.
	DefaultSampleInterval = 20 * time.Millisecond
	// DefaultReportInterval is the default status report period.
	DefaultReportInterval = 5 * time.Second
)

// Options configures the daemon.
type Options struct {
	Board      string
	Order      pixel.ChannelOrder
	Animations string
	Rules      string

	Listen     string
	ID         uint
	Report     string
	ReportEach time.Duration

	Accelerometer  string
	SampleInterval time.Duration
	Battery        string

	MetricsAddr string
	LogLevel    string

	Settings *settings.Settings
}

// AddFlags registers o's flags on fs, with o's current values as defaults.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Board, "board", o.Board, "Board layout (d20 or d6).")
	fs.Var(&o.Order, "order", "Channel order of the LED strip.")
	fs.StringVar(&o.Animations, "animations", o.Animations, "Path to the animation set YAML file.")
	fs.StringVar(&o.Rules, "rules", o.Rules, "Path to a behavior rules YAML file.")
	fs.StringVar(&o.Listen, "listen", o.Listen, "Listen for app messages on this [host][:port].")
	fs.UintVar(&o.ID, "id", o.ID, "Die ID reported to apps.")
	fs.StringVar(&o.Report, "report", o.Report, "If set, send periodic state reports to this host:port.")
	fs.DurationVar(&o.ReportEach, "report-interval", o.ReportEach, "Time between state reports.")
	fs.StringVar(&o.Accelerometer, "accelerometer", o.Accelerometer,
		"IIO accelerometer device directory. If empty, motion is disabled.")
	fs.DurationVar(&o.SampleInterval, "sample-interval", o.SampleInterval, "Accelerometer sample period.")
	fs.StringVar(&o.Battery, "battery", o.Battery,
		"Power supply voltage file, in microvolts. If empty, battery monitoring is disabled.")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", o.MetricsAddr,
		"Serve prometheus metrics on this address. If empty, metrics are not served.")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (debug, info, warn, error).")
	o.Settings.AddFlags(fs)
}

// DefaultOptions returns the default daemon options.
func DefaultOptions() *Options {
	return &Options{
		Board:          "d20",
		Order:          pixel.OrderBRG,
		Listen:         "0.0.0.0",
		ID:             1,
		ReportEach:     DefaultReportInterval,
		SampleInterval: DefaultSampleInterval,
		MetricsAddr:    ":9100",
		LogLevel:       "info",
		Settings:       settings.Default(),
	}
}

// Main is the main entry point.
func Main() {
	opts := DefaultOptions()
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	opts.AddFlags(fs)
	_ = fs.Parse(os.Args[1:])

	logger, err := logging.NewZap(opts.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	c, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Run(c, opts, logger); err != nil && errors.Cause(err) != context.Canceled {
		logger.Errorf("Daemon failed: %s", err)
		os.Exit(1)
	}
}

// registerMonitoring registers every package's metrics with reg.
func registerMonitoring(reg prometheus.Registerer) {
	controller.RegisterMonitoring(reg)
	strip.RegisterMonitoring(reg)
	motion.RegisterMonitoring(reg)
	battery.RegisterMonitoring(reg)
	message.RegisterMonitoring(reg)
}

// die holds the die's wired subsystems.
type die struct {
	strip    *strip.APA102
	ctrl     *controller.Controller
	tracker  *motion.Tracker
	battery  *battery.Controller
	behavior *behavior.Behavior
	link     *message.Link
}

// build loads opts' files and wires the die's subsystems. The strip is not
// initialized.
func build(opts *Options, b *board.Board, logger logging.L) (*die, error) {
	if opts.Animations == "" {
		return nil, errors.New("an animation set is required")
	}
	set, err := animfile.LoadFile(opts.Animations, b.LEDCount())
	if err != nil {
		return nil, err
	}

	var rules []behavior.Rule
	if opts.Rules != "" {
		if rules, err = behavior.LoadRulesFile(opts.Rules); err != nil {
			return nil, err
		}
	}

	var d die
	d.strip = &strip.APA102{
		Count:  b.LEDCount(),
		Order:  opts.Order,
		Logger: logging.Prefixed(logger, "strip"),
	}
	d.ctrl = &controller.Controller{
		Set:      set,
		Board:    b,
		Settings: opts.Settings,
		Strip:    d.strip,
		Logger:   logging.Prefixed(logger, "controller"),
	}
	d.tracker = &motion.Tracker{
		Board:    b,
		Settings: opts.Settings,
		OnFrame:  d.ctrl.OnMotion,
		Logger:   logging.Prefixed(logger, "motion"),
	}

	d.behavior = &behavior.Behavior{
		Executor: behavior.Executor{
			Player:     d.ctrl,
			Animations: set,
			Faces:      d.tracker,
			Logger:     logging.Prefixed(logger, "behavior"),
		},
		Rules:  rules,
		Logger: logging.Prefixed(logger, "behavior"),
	}
	d.tracker.OnState = d.behavior.OnMotionState

	dispatcher := message.Dispatcher{
		ID:     uint8(opts.ID),
		Player: d.ctrl,
		Motion: d.tracker,
		Logger: logging.Prefixed(logger, "dispatch"),
	}

	if opts.Battery != "" {
		d.battery = &battery.Controller{
			Sensor:   battery.SysfsSensor(opts.Battery),
			Settings: opts.Settings,
			Logger:   logging.Prefixed(logger, "battery"),
		}
		d.strip.OnPowerChange = d.battery.OnPowerChange
		dispatcher.Battery = d.battery
	}

	d.link = &message.Link{
		Handler: &dispatcher,
		Logger:  logging.Prefixed(logger, "link"),
	}
	d.behavior.Executor.Link = d.link
	return &d, nil
}

// Run runs the die until c is cancelled.
func Run(c context.Context, opts *Options, logger logging.L) error {
	b, err := board.Named(opts.Board)
	if err != nil {
		return err
	}
	d, err := build(opts, b, logger)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "initializing host drivers")
	}
	if d.strip.Data, d.strip.Clock, d.strip.Power, err = strip.Pins(b.Pins()); err != nil {
		return err
	}
	if err := d.strip.Initialize(); err != nil {
		return errors.Wrap(err, "initializing strip")
	}
	if err := d.ctrl.Initialize(); err != nil {
		return errors.Wrap(err, "initializing controller")
	}
	if d.battery != nil {
		if err := d.battery.Initialize(); err != nil {
			return errors.Wrap(err, "initializing battery")
		}
		if err := d.battery.Hook(d.behavior.OnBatteryState); err != nil {
			return err
		}
	}

	addr, err := network.ParseUDP4Address(opts.Listen, message.DefaultPort)
	if err != nil {
		return err
	}
	conn, err := network.ListenUDP4(addr, 0)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	d.link.Start(conn)
	defer d.link.Close()

	// Everything that can fail is set up before the first goroutine starts.
	var r *reporter
	if opts.Report != "" {
		if r, err = newReporter(opts, d, logger); err != nil {
			return err
		}
		defer r.Sender.Close()
	}
	if opts.MetricsAddr != "" {
		srv, _, err := serveMetrics(opts.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	c, cancel := context.WithCancel(c)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	spawn := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(c); err != nil && errors.Cause(err) != context.Canceled {
				logger.Errorf("%s stopped: %s", name, err)
			}
		}()
	}

	spawn("controller", d.ctrl.Run)
	spawn("link watcher", func(c context.Context) error {
		return d.link.Watch(c, time.Second, d.behavior.OnConnection)
	})
	if d.battery != nil {
		spawn("battery", d.battery.Run)
	}
	if opts.Accelerometer != "" {
		sensor := motion.IIOSensor(opts.Accelerometer)
		spawn("accelerometer", func(c context.Context) error {
			return d.tracker.Sample(c, sensor, opts.SampleInterval)
		})
	}
	if r != nil {
		spawn("reporter", r.run)
	}

	d.behavior.Hello()
	logger.Infof("Die %d running on %s, listening on %s.", opts.ID, b, d.link.Addr())

	<-c.Done()
	cancel()
	wg.Wait()

	d.ctrl.StopAll()
	d.ctrl.Tick(0)
	return c.Err()
}

// newReporter builds a reporter that sends d's state to opts.Report.
func newReporter(opts *Options, d *die, logger logging.L) (*reporter, error) {
	raddr, err := network.ParseUDP4Address(opts.Report, message.DefaultPort)
	if err != nil {
		return nil, err
	}

	r := reporter{
		Sender: &network.ResilientDatagramSender{
			Factory: func() (network.DatagramSender, error) {
				conn, err := network.DialUDP4(raddr, 0)
				if err != nil {
					return nil, err
				}
				return network.UDPDatagramSender(conn), nil
			},
		},
		Motion:   d.tracker,
		Interval: opts.ReportEach,
		Logger:   logging.Prefixed(logger, "report"),
	}
	if d.battery != nil {
		r.Battery = d.battery
	}
	return &r, nil
}

// serveMetrics serves prometheus metrics for every package at /metrics on
// addr. It returns the server and the address it is listening on.
func serveMetrics(addr string, logger logging.L) (*http.Server, net.Addr, error) {
	reg := prometheus.NewRegistry()
	registerMonitoring(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listening on %s", addr)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server failed: %s", err)
		}
	}()
	logger.Infof("Serving metrics on http://%s/metrics", l.Addr())
	return srv, l.Addr(), nil
}
