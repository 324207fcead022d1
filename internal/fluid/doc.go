// Package fluid implements the SPH fluid simulator.
//
// A [Simulator] owns a fixed-size particle arena and a spatial index. Each
// [Simulator.Step] rebuilds the index, estimates density and pressure, sums
// pressure, viscosity, gravity and queued external forces, integrates with
// semi-implicit Euler and resolves collisions against an axis-aligned box.
//
//	sim, err := fluid.New(500, fluid.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < 60; i++ {
//	    _ = sim.Step(sim.Params().TimeStep)
//	}
//	snap := sim.State()
//
// # Pressure Clamp
//
// Pressure follows p = max(0, k(ρ-ρ₀)). Under-dense regions get zero
// pressure instead of negative pressure, so particles never attract each
// other through the pressure term.
//
// # Numerical Faults
//
// A non-finite density, pressure, force or position is repaired on the
// offending particle (zeroed, or restored to a finite value) and counted in
// [StepStats.Clamped]. Faults are logged, never returned.
//
// # Thread Safety
//
// Simulator is NOT safe for concurrent use. Step, AddExternalForce and State
// must be serialized by the caller. Inside a step the density and force passes
// run in parallel over disjoint index ranges.
package fluid
