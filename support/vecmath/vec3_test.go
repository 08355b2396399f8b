// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package vecmath

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

func beCloseToVec(v Vec3) types.GomegaMatcher {
	return WithTransform(func(o Vec3) float64 { return o.Sub(v).Magnitude() }, BeNumerically("<", 1e-9))
}

var _ = Describe("Vec3", func() {
	It("computes products", func() {
		a, b := Vec3{1, 0, 0}, Vec3{0, 1, 0}
		Expect(a.Dot(b)).To(BeZero())
		Expect(a.Cross(b)).To(Equal(Vec3{0, 0, 1}))
		Expect(Vec3{3, 4, 0}.Magnitude()).To(BeNumerically("~", 5))
		Expect(Vec3{3, 4, 0}.SqrMagnitude()).To(BeNumerically("~", 25))
	})

	It("leaves the zero vector alone when normalizing", func() {
		Expect(Vec3{}.Normalized()).To(Equal(Vec3{}))
	})

	It("finds a perpendicular vector", func() {
		for _, v := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 2, 3}} {
			Expect(v.Perpendicular().Dot(v)).To(BeNumerically("~", 0, 1e-9))
			Expect(v.Perpendicular().Magnitude()).To(BeNumerically("~", 1, 1e-9))
		}
	})

	Context("rotations", func() {
		It("carries from onto to", func() {
			from, to := Vec3{1, 1, 0}.Normalized(), Vec3{0, 0, 1}
			Expect(RotationBetween(from, to).Apply(from)).To(beCloseToVec(to))
		})

		It("handles identical vectors", func() {
			v := Vec3{0, 1, 0}
			Expect(RotationBetween(v, v).Apply(Vec3{1, 2, 3})).To(Equal(Vec3{1, 2, 3}))
		})

		It("handles antiparallel vectors", func() {
			v := Vec3{0, 0, 1}
			Expect(RotationBetween(v, v.Neg()).Apply(v)).To(beCloseToVec(v.Neg()))
		})

		It("preserves length", func() {
			r := RotationBetween(Vec3{1, 0, 0}, Vec3{0, 1, 0})
			Expect(r.Apply(Vec3{2, 3, 4}).Magnitude()).To(BeNumerically("~", Vec3{2, 3, 4}.Magnitude(), 1e-9))
		})
	})
})

func TestVecMath(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test vecmath")
}
