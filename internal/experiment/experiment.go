// Package experiment drives a fluid simulator headlessly for a fixed number
// of steps, recording metrics, a per-step series and sampled frames.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/metrics"
	"github.com/san-kum/sphfluid/internal/particles"
)

type Config struct {
	Steps int
	Dt    float64
	// FrameEvery records a full snapshot every n steps, plus the initial and
	// final state. 0 records only those two.
	FrameEvery int
}

// Observer sees the state after every step.
type Observer interface {
	OnStep(snap particles.Snapshot, stats fluid.StepStats)
}

// Hook runs before step (0-based) and may queue forces or reset the system.
type Hook func(step int, sim *fluid.Simulator) error

type Result struct {
	Steps   int
	Frames  []particles.Snapshot
	Series  *metrics.Series
	Metrics map[string]float64
	Last    fluid.StepStats
	Elapsed time.Duration
}

type Experiment struct {
	cfg       Config
	simulator *fluid.Simulator
	metrics   []metrics.Metric
	observers []Observer
	hooks     []Hook
}

func New(sim *fluid.Simulator, cfg Config) *Experiment {
	return &Experiment{cfg: cfg, simulator: sim}
}

func (e *Experiment) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer)     { e.observers = append(e.observers, o) }
func (e *Experiment) BeforeStep(h Hook)          { e.hooks = append(e.hooks, h) }

// Simulator returns the driven simulator.
func (e *Experiment) Simulator() *fluid.Simulator {
	return e.simulator
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if e.cfg.Steps < 0 {
		return nil, fmt.Errorf("steps must not be negative, got %d", e.cfg.Steps)
	}
	dt := e.cfg.Dt
	if dt == 0 {
		dt = e.simulator.Params().TimeStep
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	result := &Result{
		Series:  metrics.NewSeries(e.simulator.Params().ParticleMass),
		Metrics: make(map[string]float64),
	}
	start := time.Now()

	var snap particles.Snapshot
	e.simulator.SnapshotInto(&snap)
	result.Frames = append(result.Frames, snap.Clone())

	for i := 0; i < e.cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, h := range e.hooks {
			if err := h(i, e.simulator); err != nil {
				return result, fmt.Errorf("step %d: %w", i, err)
			}
		}
		if err := e.simulator.Step(dt); err != nil {
			return result, fmt.Errorf("step %d: %w", i, err)
		}

		stats := e.simulator.Stats()
		e.simulator.SnapshotInto(&snap)
		for _, m := range e.metrics {
			m.Observe(snap, stats)
		}
		for _, obs := range e.observers {
			obs.OnStep(snap, stats)
		}
		result.Series.Record(snap, stats)
		result.Steps++
		result.Last = stats

		last := i == e.cfg.Steps-1
		if last || (e.cfg.FrameEvery > 0 && (i+1)%e.cfg.FrameEvery == 0) {
			result.Frames = append(result.Frames, snap.Clone())
		}
	}

	result.Elapsed = time.Since(start)
	result.Metrics = metrics.Values(e.metrics)
	return result, nil
}
