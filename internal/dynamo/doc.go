// Package dynamo drives a ball table through time.
//
// The package wraps the single-step core in [physics] with the pieces a host
// loop needs:
//
//   - [Simulator]: advances a state once per frame, records it and feeds metrics
//   - [Metric] and [Observer]: read-only hooks called before every step;
//     metrics also see the final state
//   - [Ensemble]: the same configuration over consecutive seeds, in parallel
//
// # Example
//
//	s := physics.NewState(16, physics.Table{Width: 10, Height: 20})
//	_ = physics.Initialize(s, rand.New(rand.NewSource(1)))
//	sim := dynamo.New(physics.NewStepper(len(s.Balls)))
//	result, err := sim.Run(ctx, s, dynamo.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel simulations,
// use the [Ensemble] type, which gives every run its own state and stepper.
package dynamo
