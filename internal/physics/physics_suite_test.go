package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPhysics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Physics Suite")
}

// scatter places n balls and gives each a random horizontal velocity.
func scatter(n int, seed int64, speed float64) *State {
	s := NewState(n, Table{Width: 12, Height: 24})
	rng := rand.New(rand.NewSource(seed))
	Expect(Initialize(s, rng)).To(Succeed())
	for i := range s.Balls {
		a := rng.Float64() * 2 * math.Pi
		s.Balls[i].Velocity = mgl64.Vec3{speed * math.Cos(a), 0, speed * math.Sin(a)}
	}
	return s
}

var _ = Describe("Stepper", func() {
	const dt = 1.0 / 60

	Context("over a long run", func() {
		var s *State
		var st *Stepper

		BeforeEach(func() {
			s = scatter(16, 2024, 15)
			st = NewStepper(len(s.Balls))
		})

		It("keeps every orientation a unit quaternion", func() {
			for step := 0; step < 2000; step++ {
				st.Advance(s, dt)
				for i, b := range s.Balls {
					Expect(b.Orientation.Len()).To(BeNumerically("~", 1, 1e-5), "ball %d at step %d", i, step)
				}
			}
		})

		It("keeps the state finite and balls on the rest plane", func() {
			for step := 0; step < 2000; step++ {
				st.Advance(s, dt)
				Expect(s.IsValid()).To(BeTrue(), "step %d", step)
			}
			for _, b := range s.Balls {
				Expect(b.Position.Y()).To(Equal(RestHeight))
				Expect(b.Velocity.Y()).To(BeZero())
			}
		})

		It("accumulates elapsed time", func() {
			for step := 0; step < 120; step++ {
				st.Advance(s, dt)
			}
			Expect(s.Time).To(BeNumerically("~", 2.0, 1e-9))
		})
	})

	It("matches a fresh stepper when reused", func() {
		a := scatter(10, 5, 8)
		b := a.Clone()
		reused := NewStepper(len(a.Balls))
		for step := 0; step < 300; step++ {
			reused.Advance(a, dt)
			Advance(b, dt)
		}
		Expect(a.Balls).To(Equal(b.Balls))
	})

	It("does not touch balls without contacts beyond free flight", func() {
		s := NewState(2, Table{Width: 12, Height: 24})
		s.Balls[0].Position = mgl64.Vec3{-5, RestHeight, 0}
		s.Balls[1].Position = mgl64.Vec3{5, RestHeight, 0}
		s.Balls[1].Velocity = mgl64.Vec3{0, 0, 1}

		Advance(s, 1)

		Expect(s.Balls[0].Position).To(Equal(mgl64.Vec3{-5, RestHeight, 0}))
		Expect(s.Balls[1].Position).To(Equal(mgl64.Vec3{5, RestHeight, 1}))
		Expect(s.Balls[1].Velocity).To(Equal(mgl64.Vec3{0, 0, 1}))
	})
})

var _ = Describe("Initialize", func() {
	DescribeTable("respects the placement clearance",
		func(n int, width, height float64) {
			s := NewState(n, Table{Width: width, Height: height})
			Expect(Initialize(s, rand.New(rand.NewSource(int64(n))))).To(Succeed())
			for i := range s.Balls {
				for j := i + 1; j < n; j++ {
					d := s.Balls[j].Position.Sub(s.Balls[i].Position).Len()
					Expect(d).To(BeNumerically(">=", PlacementClearance))
				}
			}
		},
		Entry("a full rack on a standard table", 16, 10.0, 20.0),
		Entry("a handful on a small table", 4, 4.0, 4.0),
		Entry("a crowd on a large table", 40, 20.0, 40.0),
	)
})
