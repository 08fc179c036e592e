// Package models provides built-in stochastic differential equation models.
//
// Every model evaluates drift and diffusion for a whole batch of
// realizations at once, following the [sde.System] contract:
//
//   - [Brownian]: Brownian motion with constant drift
//   - [OrnsteinUhlenbeck]: mean-reverting process
//   - [GeometricBrownian]: multiplicative noise, log-normal paths
//   - [DoubleWell]: Langevin particle in a bistable potential
//   - [VanDerPol]: limit-cycle oscillator with velocity noise
//   - [Pendulum]: damped pendulum driven by random torque
//   - [Lorenz]: Lorenz attractor with additive noise
//   - [Duffing]: forced Duffing oscillator with velocity noise
//   - [Rossler]: Rössler attractor with additive noise
//
// Models keep no per-call state and are safe for concurrent use as long as
// their parameters are not changed during a run.
package models
