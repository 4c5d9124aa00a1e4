package mpc

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/windmpc/internal/wake"
)

var _ = Describe("adjoint gradients", func() {
	newTracking := func(turbines int, refScale float64) *Solver {
		p := wake.DefaultParams()
		p.Turbines = turbines
		f, err := wake.NewFarm(p)
		Expect(err).NotTo(HaveOccurred())
		ref := f.FarmPower() * refScale
		grid, refs, err := BuildHorizon(f, 0, 17, 0.8, []float64{0, 1e4}, []float64{ref, ref})
		Expect(err).NotTo(HaveOccurred())
		s, err := NewSolver(f, grid, refs)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	// an adjoint gradient and its finite-difference estimate agree when the
	// gap is within finite-difference noise, absolutely for small values and
	// relatively for large ones
	expectClose := func(adj, fd float64, label string) {
		tol := 1e-3 + 1e-4*math.Abs(fd)
		Expect(adj).To(BeNumerically("~", fd, tol), label)
	}

	It("matches finite differences for a single turbine", func() {
		s := newTracking(1, 1.05)
		maxAbs, maxRel, err := s.GradientCheck()
		Expect(err).NotTo(HaveOccurred())
		Expect(maxAbs).To(BeNumerically("<", 1e-3))
		Expect(maxRel).To(BeNumerically("<", 1e-3))

		for k := 1; k < s.traj.Nt; k++ {
			expectClose(s.traj.GradTorque[0][k], s.traj.FDTorque[0][k], "torque gradient")
		}
		// torque gradients must be informative off the reference
		Expect(s.traj.GradTorque[0][s.traj.Nt-1]).NotTo(BeZero())
	})

	It("reports zero pitch gradients for a lone turbine", func() {
		// with no turbine downstream, the wake a lone rotor carves never
		// reaches another rotor, so pitch cannot move the cost
		s := newTracking(1, 1.05)
		_, _, err := s.GradientCheck()
		Expect(err).NotTo(HaveOccurred())
		for k := 1; k < s.traj.Nt; k++ {
			Expect(s.traj.GradPitch[0][k]).To(BeZero())
			Expect(s.traj.FDPitch[0][k]).To(BeZero())
		}
	})

	It("matches finite differences for two wake-coupled turbines", func() {
		s := newTracking(2, 0.95)
		maxAbs, maxRel, err := s.GradientCheck()
		Expect(err).NotTo(HaveOccurred())
		Expect(maxAbs).To(BeNumerically("<", 1e-3))
		Expect(maxRel).To(BeNumerically("<", 1e-3))

		for i := 0; i < s.traj.N; i++ {
			for k := 1; k < s.traj.Nt; k++ {
				expectClose(s.traj.GradPitch[i][k], s.traj.FDPitch[i][k], "pitch gradient")
				expectClose(s.traj.GradTorque[i][k], s.traj.FDTorque[i][k], "torque gradient")
			}
		}

		// upstream pitch reaches the cost through the downstream rotor
		Expect(s.traj.GradPitch[0][1]).NotTo(BeZero())
		// the last turbine wakes nobody, so its pitch gradients vanish
		for k := 1; k < s.traj.Nt; k++ {
			Expect(s.traj.GradPitch[1][k]).To(BeZero())
		}
	})

	It("leaves the canonical solve untouched while verifying", func() {
		s := newTracking(2, 1.05)
		Expect(s.Solve()).To(Succeed())
		cost := s.Cost()
		gp := s.traj.GradPitch[0][1]
		gq := s.traj.GradTorque[1][2]
		q := s.traj.Torque[0][1]

		Expect(s.VerifyGradients()).To(Succeed())

		Expect(s.Cost()).To(Equal(cost))
		Expect(s.traj.GradPitch[0][1]).To(Equal(gp))
		Expect(s.traj.GradTorque[1][2]).To(Equal(gq))
		Expect(s.traj.Torque[0][1]).To(Equal(q))
	})

	It("agrees in the dimensionless regime", func() {
		s := newTracking(2, 0.95)
		s.ToDimensionless()
		_, maxRel, err := s.GradientCheck()
		Expect(err).NotTo(HaveOccurred())
		Expect(maxRel).To(BeNumerically("<", 1e-3))
	})
})
