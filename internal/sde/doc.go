// Package sde simulates stochastic differential equations
//
//	dX = f(t, X) dt + g(t, X) dW
//
// with the Euler–Maruyama scheme, vectorized over a batch of independent
// realizations.
//
// The package defines the tensor contract shared by the integrator and the
// model functions:
//
//   - state X: an n×R [mat.Dense], one column per realization
//   - drift f(t, X): n×R
//   - diffusion g(t, X): a (n, d, R) [Tensor] loading d noise sources onto n coordinates
//   - increments dW: a (R, N, d) [Tensor] of Normal(0, dt) draws
//   - paths: a (R, N+1, n) [Tensor], slot 0 holding the initial condition
//
// # Example
//
//	sim := sde.NewFromSystem(models.NewOrnsteinUhlenbeck())
//	x0 := mat.NewDense(1, 1000, nil)
//	res, err := sim.Run(ctx, x0, sde.Config{Duration: 1, Steps: 1000, Realizations: 1000, Seed: 42})
//
// # Reproducibility
//
// All increments are drawn before the first step from a single generator,
// either [Config.Source] or a source seeded with [Config.Seed]. Two runs with
// the same seed and inputs produce bit-identical paths, whatever the value of
// [Config.Workers].
//
// # Thread Safety
//
// A Simulator holds no mutable state and may be shared. Drift and diffusion
// functions must be safe for concurrent use when driven by an [Ensemble].
package sde
