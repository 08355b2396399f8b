// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package motion

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/danjacques/pixeldie/support/logging"
	"github.com/danjacques/pixeldie/support/vecmath"

	"github.com/pkg/errors"
)

// StandardGravity is one g, in m/s².
const StandardGravity = 9.80665

// Sensor reads accelerometer samples.
type Sensor interface {
	// Acceleration returns the current acceleration, in g.
	Acceleration() (vecmath.Vec3, error)
}

// SensorFunc is a Sensor implemented by a function.
type SensorFunc func() (vecmath.Vec3, error)

// Acceleration implements Sensor.
func (fn SensorFunc) Acceleration() (vecmath.Vec3, error) { return fn() }

// IIOSensor reads a Linux industrial I/O accelerometer from its device
// directory, such as "/sys/bus/iio/devices/iio:device0".
//
// Raw axis readings are multiplied by in_accel_scale, which reports m/s² per
// unit.
type IIOSensor string

// Acceleration implements Sensor.
func (dir IIOSensor) Acceleration() (vecmath.Vec3, error) {
	scale, err := dir.read("in_accel_scale")
	if err != nil {
		return vecmath.Vec3{}, err
	}

	var axes [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		raw, err := dir.read("in_accel_" + axis + "_raw")
		if err != nil {
			return vecmath.Vec3{}, err
		}
		axes[i] = raw * scale / StandardGravity
	}
	return vecmath.Vec3{X: axes[0], Y: axes[1], Z: axes[2]}, nil
}

func (dir IIOSensor) read(name string) (float64, error) {
	path := filepath.Join(string(dir), name)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", path)
	}
	return v, nil
}

// Sample feeds t a reading from s every interval until c is cancelled.
// Sample times are measured from the start of Sample. Failed readings are
// logged and skipped.
func (t *Tracker) Sample(c context.Context, s Sensor, interval time.Duration) error {
	logger := logging.Must(t.Logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	epoch := time.Now()
	for {
		select {
		case <-c.Done():
			return c.Err()
		case now := <-ticker.C:
			acc, err := s.Acceleration()
			if err != nil {
				sensorReadErrors.Inc()
				logger.Warnf("Failed to read accelerometer: %s", err)
				continue
			}
			t.Update(now.Sub(epoch), acc)
		}
	}
}
