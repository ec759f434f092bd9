// Package physics implements the ball table: equal-radius spheres confined to
// a rectangle, advanced one fixed timestep at a time.
//
// The package has three parts:
//
//   - [State]: per-ball position, velocity and orientation plus table bounds
//   - [Initialize]: rejection-sampled placement with a clearance margin
//   - [Stepper]: contact detection, simultaneous-contact averaging, free flight
//     and rolling orientation in a single [Stepper.Advance] call
//
// # Simultaneous Contacts
//
// Every contact found during a step proposes a velocity for each ball it
// touches. A ball's new velocity is the mean of its proposals, so the
// outcome does not depend on the order pairs are visited:
//
//	s := physics.NewState(16, physics.Table{Width: 10, Height: 20})
//	if err := physics.Initialize(s, rand.New(rand.NewSource(1))); err != nil {
//	    return err
//	}
//	st := physics.NewStepper(len(s.Balls))
//	for range frames {
//	    st.Advance(s, 1.0/60)
//	}
//
// # Thread Safety
//
// Neither [State] nor [Stepper] does any locking. One goroutine advances a
// state; readers look at it only after Advance returns.
package physics
