// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package battery

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danjacques/pixeldie/settings"

	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// testSensor returns a configurable voltage and counts readings.
type testSensor struct {
	mu    sync.Mutex
	v     float64
	err   error
	reads int
}

func (s *testSensor) set(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
}

func (s *testSensor) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *testSensor) Voltage() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.v, s.err
}

var _ = Describe("Controller", func() {
	var (
		sensor  *testSensor
		now     time.Time
		changes []State
		c       *Controller
	)

	BeforeEach(func() {
		sensor = &testSensor{v: 3.7}
		now = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
		changes = nil
		c = &Controller{
			Sensor:   sensor,
			Settings: settings.Default(),
			Now:      func() time.Time { return now },
		}
	})

	JustBeforeEach(func() {
		Expect(c.Initialize()).To(Succeed())
		Expect(c.Hook(func(s State) { changes = append(changes, s) })).To(Succeed())
	})

	step := func(v float64) State {
		now = now.Add(DefaultInterval)
		sensor.set(v)
		return c.Update()
	}

	It("starts Ok above the low threshold", func() {
		Expect(c.State()).To(Equal(StateOk))
		Expect(c.LastVoltage()).To(Equal(3.7))
	})

	It("detects charging from a rising voltage", func() {
		Expect(step(3.65)).To(Equal(StateOk))
		Expect(step(3.7)).To(Equal(StateOk))
		Expect(step(3.8)).To(Equal(StateCharging))

		// Still rising.
		Expect(step(3.95)).To(Equal(StateCharging))

		// Full.
		Expect(step(4.1)).To(Equal(StateOk))
		Expect(changes).To(Equal([]State{StateCharging, StateOk}))
	})

	It("abandons charging when the voltage stops rising", func() {
		Expect(step(3.85)).To(Equal(StateCharging))
		Expect(step(3.9)).To(Equal(StateOk))
	})

	It("abandons charging after a timeout", func() {
		Expect(step(3.85)).To(Equal(StateCharging))
		now = now.Add(InvalidChargeTimeout)
		Expect(step(3.99)).To(Equal(StateOk))
	})

	It("goes low and recovers through charging", func() {
		Expect(step(2.9)).To(Equal(StateLow))
		Expect(step(2.85)).To(Equal(StateLow))
		Expect(step(2.9)).To(Equal(StateLow))
		Expect(step(3.0)).To(Equal(StateCharging))
		Expect(step(2.95)).To(Equal(StateLow))
		Expect(changes).To(Equal([]State{StateLow, StateCharging, StateLow}))
	})

	It("keeps its state when the sensor fails", func() {
		sensor.err = errors.New("adc failure")
		Expect(step(1.0)).To(Equal(StateOk))
		Expect(changes).To(BeEmpty())
	})

	It("limits the number of handlers", func() {
		Expect(c.Hook(func(State) {})).To(Succeed())
		Expect(c.Hook(func(State) {})).ToNot(Succeed())
	})

	Context("starting with a low battery", func() {
		BeforeEach(func() {
			sensor.v = 2.5
		})

		It("starts Low", func() {
			Expect(c.State()).To(Equal(StateLow))
		})
	})

	Context("running", func() {
		var (
			ctx    context.Context
			cancel context.CancelFunc
			errC   chan error
		)

		BeforeEach(func() {
			c.Now = nil
			c.Interval = 5 * time.Millisecond
			c.QuickInterval = time.Millisecond
		})

		JustBeforeEach(func() {
			ctx, cancel = context.WithCancel(context.Background())
			errC = make(chan error, 1)
			go func() { errC <- c.Run(ctx) }()
		})

		AfterEach(func() {
			cancel()
			Eventually(errC).Should(Receive(Equal(context.Canceled)))
		})

		It("checks periodically", func() {
			reads := sensor.readCount()
			Eventually(sensor.readCount).Should(BeNumerically(">=", reads+3))
		})

		It("suspends checks while the LEDs are powered", func() {
			c.OnPowerChange(true)
			Eventually(c.Suspended).Should(BeTrue())

			reads := sensor.readCount()
			Consistently(sensor.readCount, 50*time.Millisecond).Should(Equal(reads))

			c.OnPowerChange(false)
			Eventually(c.Suspended).Should(BeFalse())
			Eventually(sensor.readCount).Should(BeNumerically(">", reads))
		})
	})
})

var _ = Describe("SysfsSensor", func() {
	var tdir string

	BeforeEach(func() {
		var err error
		tdir, err = os.MkdirTemp("", "battery_test")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	It("reads microvolts", func() {
		path := filepath.Join(tdir, "voltage_now")
		Expect(os.WriteFile(path, []byte("3712000\n"), 0644)).To(Succeed())

		v, err := SysfsSensor(path).Voltage()
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(BeNumerically("~", 3.712, 1e-9))
	})

	It("rejects garbage", func() {
		path := filepath.Join(tdir, "voltage_now")
		Expect(os.WriteFile(path, []byte("lots"), 0644)).To(Succeed())

		_, err := SysfsSensor(path).Voltage()
		Expect(err).To(HaveOccurred())
	})
})

func TestBattery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test battery")
}
