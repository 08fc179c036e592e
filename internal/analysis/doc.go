// Package analysis provides signal tools for simulated paths.
//
// The functions operate on a single series, typically the ensemble mean of
// one coordinate (see stats.MeanPath) or one realization:
//
//   - [PowerSpectrum]: FFT magnitude of a zero-padded series
//   - [DominantFrequency]: strongest non-zero frequency bin
//   - [Autocorrelation]: normalized sample autocorrelation by lag
//
// Phase space tools take a whole [sde.Result] instead: [PhasePortrait] traces
// one realization, [EnsembleCloud] scatters every realization at one time,
// and [GeneratePoincareSection] records upward crossings of a level.
//
// # Noise Color
//
// The autocorrelation of an Ornstein–Uhlenbeck path decays like exp(-θ·lag·dt),
// which gives a quick check of the reversion rate:
//
//	acf := analysis.Autocorrelation(path, 50)
//	theta := -math.Log(acf[1]) / dt
package analysis
