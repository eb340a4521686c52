// Package fluid implements a 2D SPH-lite particle fluid core.
//
// A [World] owns the particle collection for one run and advances it one
// tick at a time: a density and pressure pass over every particle pair, a
// force accumulation pass (pressure, viscosity, gravity, pointer
// interaction), then position integration with wall collisions. Passes are
// deliberately O(n²); the design targets tens to low hundreds of particles
// updated once per animation frame.
//
// Parameters arrive through [Params] and are clamped to their valid ranges
// at the boundary, never inside the kernel math. Changing any parameter
// resets the run: positions and velocities are regenerated from scratch.
//
// # Determinism
//
// Initial layout is randomized for visual variety. The random source is
// seeded through [New], so fixtures can pin exact particle placements.
package fluid
