// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package settings_test

import (
	"testing"
	"time"

	"github.com/danjacques/pixeldie/settings"

	"github.com/spf13/pflag"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Settings", func() {
	It("has valid defaults", func() {
		Expect(settings.Default().Validate()).To(Succeed())
	})

	It("rejects a cool down rate above one", func() {
		s := settings.Default()
		s.CoolDownRate = 1.5
		Expect(s.Validate()).ToNot(Succeed())
	})

	It("rejects inverted battery thresholds", func() {
		s := settings.Default()
		s.BatteryLow, s.BatteryHigh = 4.1, 3.9
		Expect(s.Validate()).ToNot(Succeed())
	})

	It("rejects a non-positive jerk clamp", func() {
		s := settings.Default()
		s.JerkClamp = 0
		Expect(s.Validate()).ToNot(Succeed())
	})

	It("can be overridden by flags", func() {
		s := settings.Default()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		s.AddFlags(fs)

		Expect(fs.Parse([]string{"--heat-up-rate=0.1", "--cool-down-rate=0.5", "--min-roll-time=1s"})).To(Succeed())
		Expect(s.HeatUpRate).To(Equal(0.1))
		Expect(s.CoolDownRate).To(Equal(0.5))
		Expect(s.MinRollTime).To(Equal(time.Second))
		Expect(s.BatteryLow).To(Equal(settings.Default().BatteryLow))
	})
})

func TestSettings(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test settings")
}
