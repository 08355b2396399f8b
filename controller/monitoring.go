// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package controller

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Reasons reported by the dropped requests counter.
const (
	dropPoolFull         = "pool_full"
	dropQueueFull        = "queue_full"
	dropMotionQueueFull  = "motion_queue_full"
	dropInvalidAnimation = "invalid_animation"
	dropInvalidFace      = "invalid_face"
)

var (
	tickCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "controller_ticks",
		Help: "Count of animation ticks processed.",
	})

	tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "controller_tick_duration_seconds",
		Help:    "Time spent processing a single animation tick.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	})

	activeInstancesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "controller_active_instances",
		Help: "Number of animation instances currently playing.",
	})

	heatGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "controller_heat",
		Help: "Current motion-driven heat value.",
	})

	startedInstances = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "controller_started_instances",
		Help: "Count of animation instances started, by special colour type.",
	},
		[]string{"special_color"})

	restartedInstances = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "controller_restarted_instances",
		Help: "Count of animation instances restarted in place.",
	})

	expiredInstances = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "controller_expired_instances",
		Help: "Count of animation instances retired after their duration elapsed.",
	})

	droppedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "controller_dropped_requests",
		Help: "Count of requests that were dropped, by reason.",
	},
		[]string{"reason"})

	showErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "controller_show_errors",
		Help: "Count of errors returned by the LED strip while showing a frame.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		tickCount,
		tickDuration,
		activeInstancesGauge,
		heatGauge,
		startedInstances,
		restartedInstances,
		expiredInstances,
		droppedRequests,
		showErrors,
	)
}
