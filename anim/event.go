// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anim

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Event is a die event that can have an animation associated with it.
type Event uint8

const (
	// EventNone is no event.
	EventNone Event = iota
	// EventHello is played when the die wakes up.
	EventHello
	// EventConnected is played when a central connects.
	EventConnected
	// EventDisconnected is played when the central disconnects.
	EventDisconnected
	// EventLowBattery is played when the battery becomes low.
	EventLowBattery
	// EventChargingStart is played when charging begins.
	EventChargingStart
	// EventChargingDone is played when charging completes.
	EventChargingDone
	// EventChargingError is played when charging fails.
	EventChargingError
	// EventHandling is played when the die is picked up.
	EventHandling
	// EventRolling is played while the die rolls.
	EventRolling
	// EventOnFace is played when the die comes to rest on a face.
	EventOnFace
	// EventCrooked is played when the die comes to rest crooked.
	EventCrooked

	// EventCount is the number of events.
	EventCount
)

var eventNames = [EventCount]string{
	EventNone:          "none",
	EventHello:         "hello",
	EventConnected:     "connected",
	EventDisconnected:  "disconnected",
	EventLowBattery:    "low_battery",
	EventChargingStart: "charging_start",
	EventChargingDone:  "charging_done",
	EventChargingError: "charging_error",
	EventHandling:      "handling",
	EventRolling:       "rolling",
	EventOnFace:        "on_face",
	EventCrooked:       "crooked",
}

func (e Event) String() string {
	if e < EventCount {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

// ParseEvent parses an event name. The empty string is EventNone.
func ParseEvent(v string) (Event, error) {
	if v == "" {
		return EventNone, nil
	}
	v = strings.ToLower(v)
	for i, name := range eventNames {
		if name == v {
			return Event(i), nil
		}
	}
	return 0, errors.Errorf("unknown event %q", v)
}
