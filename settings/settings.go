// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package settings holds the tuning constants consumed by the die's modules.
//
// Settings are a read-only snapshot: modules take a *Settings at startup and
// never modify it.
package settings

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Settings is a snapshot of the die's tuning data.
type Settings struct {
	// JerkClamp is the largest jerk magnitude considered by motion processing.
	JerkClamp float64
	// HeatUpRate scales sqrt(jerk) into heat added per motion sample.
	HeatUpRate float64
	// CoolDownRate is the geometric heat decay applied on every tick.
	CoolDownRate float64

	// BatteryLow is the voltage below which the battery is considered low.
	BatteryLow float64
	// BatteryHigh is the voltage above which a charging battery is full.
	BatteryHigh float64

	// MinRollTime is the shortest motion considered a roll.
	MinRollTime time.Duration
}

// Default returns the factory default settings.
func Default() *Settings {
	return &Settings{
		JerkClamp:    10.0,
		HeatUpRate:   0.0004,
		CoolDownRate: 0.995,
		BatteryLow:   3.0,
		BatteryHigh:  4.0,
		MinRollTime:  300 * time.Millisecond,
	}
}

// Validate checks that s holds sensible values.
func (s *Settings) Validate() error {
	switch {
	case s.CoolDownRate < 0 || s.CoolDownRate > 1:
		return errors.Errorf("cool down rate %v is outside [0, 1]", s.CoolDownRate)
	case s.HeatUpRate < 0:
		return errors.Errorf("heat up rate %v is negative", s.HeatUpRate)
	case s.JerkClamp <= 0:
		return errors.Errorf("jerk clamp %v must be positive", s.JerkClamp)
	case s.BatteryLow >= s.BatteryHigh:
		return errors.Errorf("battery low threshold %v is not below high threshold %v",
			s.BatteryLow, s.BatteryHigh)
	}
	return nil
}

// AddFlags registers command-line overrides for s on fs. Values currently in
// s are used as the flag defaults.
func (s *Settings) AddFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&s.HeatUpRate, "heat-up-rate", s.HeatUpRate,
		"Heat added per sqrt(jerk) of a motion sample.")
	fs.Float64Var(&s.CoolDownRate, "cool-down-rate", s.CoolDownRate,
		"Fraction of heat retained on every animation tick.")
	fs.Float64Var(&s.JerkClamp, "jerk-clamp", s.JerkClamp,
		"Largest jerk magnitude considered by motion processing.")
	fs.Float64Var(&s.BatteryLow, "battery-low", s.BatteryLow,
		"Battery voltage below which the battery is low.")
	fs.Float64Var(&s.BatteryHigh, "battery-high", s.BatteryHigh,
		"Battery voltage above which a charging battery is full.")
	fs.DurationVar(&s.MinRollTime, "min-roll-time", s.MinRollTime,
		"Shortest motion considered a roll.")
}
