// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package daemon

import (
	"bytes"
	"context"
	"time"

	"github.com/danjacques/pixeldie/message"
	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/network"
)

// reporter periodically sends the die's state to a fixed host, independent
// of any app connected over the message Link.
type reporter struct {
	// Sender sends report datagrams. It must not be nil.
	Sender network.DatagramSender

	// Motion, if not nil, is reported as DieState.
	Motion message.MotionSource
	// Battery, if not nil, is reported as BatteryLevel.
	Battery message.VoltageSource

	Interval time.Duration
	Logger   logging.L
}

// report sends a single round of messages.
func (r *reporter) report() {
	logger := logging.Must(r.Logger)

	var msgs []message.Message
	if r.Motion != nil {
		face := r.Motion.CurrentFace()
		if face < 0 {
			face = message.AnyFace
		}
		msgs = append(msgs, &message.DieState{State: uint8(r.Motion.State()), Face: uint8(face)})
	}
	if r.Battery != nil {
		v, err := r.Battery.Voltage()
		if err != nil {
			logger.Warnf("Not reporting battery level: %s", err)
		} else {
			msgs = append(msgs, &message.BatteryLevel{Level: float32(v)})
		}
	}

	var buf bytes.Buffer
	for _, msg := range msgs {
		buf.Reset()
		if err := message.WriteMessage(msg, &buf); err != nil {
			logger.Errorf("Could not encode %s report: %s", msg.Type(), err)
			continue
		}
		if err := r.Sender.SendDatagram(buf.Bytes()); err != nil {
			logger.Debugf("Could not send %s report: %s", msg.Type(), err)
		}
	}
}

// run reports every Interval until c is cancelled.
func (r *reporter) run(c context.Context) error {
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-c.Done():
			return c.Err()
		case <-t.C:
			r.report()
		}
	}
}
