// Package analysis provides post-run analysis of fluid simulations.
//
// The package works on the per-step series recorded by a run and on live
// simulators:
//
//   - [PowerSpectrum]: magnitude spectrum of a series
//   - [DominantFrequency]: strongest non-DC frequency, e.g. the slosh of mean height
//   - [LyapunovExponent]: divergence rate of two runs started a nudge apart
//   - [NewPhasePortrait]: two series plotted against each other
//
// # Sloshing
//
// A dam break settles into a standing wave; its period shows up as the
// dominant frequency of the mean height:
//
//	f, _ := analysis.DominantFrequency(series.Column("mean_height"), dt)
package analysis
