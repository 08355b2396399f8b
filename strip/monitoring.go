// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package strip

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	stripFramesShown = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "strip_frames_shown",
		Help: "Count of frames written to the LED strip.",
	})

	stripBytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "strip_bytes_written",
		Help: "Count of bytes clocked out to the LED strip.",
	})

	stripShowErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "strip_show_errors",
		Help: "Count of errors encountered writing to the LED strip.",
	})

	stripShowDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "strip_show_duration_seconds",
		Help:    "Time taken to write a frame to the LED strip.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	stripPowerGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "strip_power",
		Help: "1 if the LED strip's power rail is on, 0 otherwise.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		stripFramesShown,
		stripBytesWritten,
		stripShowErrors,
		stripShowDuration,
		stripPowerGauge,
	)
}
