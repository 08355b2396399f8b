// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package battery

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batteryVoltageGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_voltage",
		Help: "Most recent battery voltage reading, in volts.",
	})

	batteryStateGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_state",
		Help: "Current battery state (0=unknown, 1=ok, 2=low, 3=charging).",
	})

	batteryReadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "battery_read_errors",
		Help: "Count of failed battery voltage readings.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		batteryVoltageGauge,
		batteryStateGauge,
		batteryReadErrors,
	)
}
