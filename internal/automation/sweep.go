package automation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/dynamo"
	"github.com/san-kum/sphfluid/internal/experiment"
	"github.com/san-kum/sphfluid/internal/metrics"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// ParameterSweep runs one simulation per parameter value, evenly spaced
// between ParamMin and ParamMax.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	// Workers bounds the simulations in flight; 0 uses GOMAXPROCS.
	Workers int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Clamped    int
}

func (s *ParameterSweep) values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.ParamMin + float64(i)*step
	}
	return out
}

func limit(workers int) int {
	if workers <= 0 {
		return dynamo.DefaultWorkers()
	}
	return workers
}

// runOne runs cfg headlessly with single-threaded passes; the sweep itself
// supplies the parallelism.
func runOne(ctx context.Context, cfg *config.Config, log logr.Logger) (*experiment.Result, error) {
	cfg.Performance.Workers = 1
	sim, err := cfg.NewSimulator(log)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(sim, experiment.Config{Steps: cfg.Run.Steps})
	for _, m := range metrics.Default(cfg.Fluid.ParticleMass) {
		exp.AddMetric(m)
	}
	return exp.Run(ctx)
}

// RunSweep executes a parameter sweep. Results are in parameter order; the
// first failing run cancels the rest.
func RunSweep(ctx context.Context, sweep *ParameterSweep, log logr.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one value, got %d", sweep.NumSteps)
	}
	base := sweep.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	probe := *base
	if err := probe.SetParam(sweep.ParamName, sweep.ParamMin); err != nil {
		return nil, err
	}

	values := sweep.values()
	results := make([]SweepResult, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(sweep.Workers))
	for i, v := range values {
		g.Go(func() error {
			cfg := *base
			if err := cfg.SetParam(sweep.ParamName, v); err != nil {
				return err
			}
			res, err := runOne(ctx, &cfg, log)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
			}
			results[i] = SweepResult{ParamValue: v, Metrics: res.Metrics, Clamped: res.Last.Clamped}
			log.V(1).Info("sweep point done", "param", sweep.ParamName, "value", v, "index", i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloConfig reruns a block layout from random seeds to see how
// sensitive a configuration is to its starting arrangement.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Seed      uint64
	Workers   int
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID    int
	LayoutSeed uint64
	Metrics    map[string]float64
	Stable     bool
}

// RunMonteCarlo executes multiple trials with random layout seeds.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, log logr.Logger) ([]MonteCarloResult, error) {
	base := mc.Base
	if base == nil {
		base = config.DefaultConfig()
	}
	rng := rand.New(rand.NewPCG(mc.Seed, mc.Seed^0x9e3779b97f4a7c15))
	seeds := make([]uint64, mc.NumTrials)
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}

	results := make([]MonteCarloResult, mc.NumTrials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(mc.Workers))
	for trial, seed := range seeds {
		g.Go(func() error {
			cfg := *base
			if cfg.Layout.Kind != config.LayoutBlock {
				cfg.Layout = blockAround(&cfg)
			}
			cfg.Layout.Seed = seed
			res, err := runOne(ctx, &cfg, log)
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial, err)
			}
			results[trial] = MonteCarloResult{
				TrialID:    trial,
				LayoutSeed: seed,
				Metrics:    res.Metrics,
				Stable:     res.Metrics["stability"] == 1,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// blockAround turns a grid layout into a block of the same extent, padded by
// half a smoothing radius so a single layer still has volume.
func blockAround(cfg *config.Config) config.LayoutConfig {
	grid := cfg.ParticleLayout().Positions(cfg.Fluid.Particles)
	if len(grid) == 0 {
		return cfg.Layout
	}
	lo, hi := grid[0], grid[0]
	for _, p := range grid {
		lo.X, lo.Y, lo.Z = min(lo.X, p.X), min(lo.Y, p.Y), min(lo.Z, p.Z)
		hi.X, hi.Y, hi.Z = max(hi.X, p.X), max(hi.Y, p.Y), max(hi.Z, p.Z)
	}
	h := 0.5 * cfg.Fluid.SmoothingRadius
	pad := r3.Vec{X: h, Y: h, Z: h}
	lo, hi = r3.Sub(lo, pad), r3.Add(hi, pad)
	return config.LayoutConfig{Kind: config.LayoutBlock, Min: config.Vec3(lo), Max: config.Vec3(hi)}
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
