// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package motion

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	stateChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "motion_state_changes",
		Help: "Count of die state changes, by new state.",
	}, []string{"state"})

	currentFaceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "motion_current_face",
		Help: "Face most recently detected as facing up.",
	})

	sensorReadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "motion_sensor_read_errors",
		Help: "Count of failed accelerometer readings.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		stateChanges,
		currentFaceGauge,
		sensorReadErrors,
	)
}
