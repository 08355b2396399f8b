// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package message

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	messagesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "message_received",
		Help: "Count of messages received, by type.",
	},
		[]string{"type"})

	messagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "message_sent",
		Help: "Count of messages sent, by type.",
	},
		[]string{"type"})

	messageDecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "message_decode_errors",
		Help: "Count of received datagrams that could not be decoded.",
	})

	messageSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "message_send_errors",
		Help: "Count of errors encountered sending messages.",
	})

	messageLinkConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "message_link_connected",
		Help: "1 if a peer has been heard from recently, 0 otherwise.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		messagesReceived,
		messagesSent,
		messageDecodeErrors,
		messageSendErrors,
		messageLinkConnected,
	)
}
