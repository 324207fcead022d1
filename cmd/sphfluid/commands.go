package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/sphfluid/internal/analysis"
	"github.com/san-kum/sphfluid/internal/automation"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/experiment"
	"github.com/san-kum/sphfluid/internal/export"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/gui"
	"github.com/san-kum/sphfluid/internal/metrics"
	"github.com/san-kum/sphfluid/internal/particles"
	"github.com/san-kum/sphfluid/internal/storage"
	"github.com/san-kum/sphfluid/internal/stream"
	"github.com/san-kum/sphfluid/internal/viz"
	"github.com/spf13/cobra"
)

var presetInfo = map[string]string{
	"dam_break": "column released along one wall",
	"droplet":   "cube dropped onto the floor",
	"calm":      "viscous pool at rest",
	"zero_g":    "weightless blob",
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(m)) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func saveResult(name string, cfg *config.Config, result *experiment.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(&storage.Run{
		Preset:  name,
		Config:  cfg,
		Steps:   result.Steps,
		Elapsed: result.Elapsed,
		Metrics: result.Metrics,
		Frames:  result.Frames,
		Series:  result.Series,
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	sim, err := cfg.NewSimulator(newLogger())
	if err != nil {
		return err
	}

	exp := experiment.New(sim, experiment.Config{Steps: cfg.Run.Steps, FrameEvery: cfg.Run.FrameEvery})
	for _, m := range metrics.Default(cfg.Fluid.ParticleMass) {
		exp.AddMetric(m)
	}

	fmt.Printf("running %s: %d particles, %d steps...\n", name, cfg.Fluid.Particles, cfg.Run.Steps)
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := saveResult(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d, frames: %d, clamped on last step: %d\n", result.Steps, len(result.Frames), result.Last.Clamped)
	printMetrics(result.Metrics)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tPARTICLES\tSTEPS\tFRAMES\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%v\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Frames,
			run.Elapsed.Round(time.Millisecond),
		)
	}
	return w.Flush()
}

func loadSeries(runID string) (*storage.RunMetadata, *metrics.Series, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if series.Len() == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, series, nil
}

func seriesColumn(s *metrics.Series, name string) ([]float64, error) {
	col := s.Column(name)
	if col == nil {
		return nil, fmt.Errorf("unknown column %q (available: %v)", name, metrics.SeriesColumns)
	}
	return col, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", series.Len())

	columns := metrics.SeriesColumns
	if plotColumn != "" {
		columns = []string{plotColumn}
	}
	for _, name := range columns {
		data, err := seriesColumn(series, name)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs step"),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	data, err := seriesColumn(series, column)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Preset)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 2 {
		fmt.Println(asciigraph.Plot(ps[1:max(len(ps)/4, 2)],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+column+")"),
		))
		fmt.Println()
	}

	if meta.Config == nil {
		return fmt.Errorf("run %s has no stored config", meta.ID)
	}
	dt := meta.Config.Fluid.TimeStep
	freq, power := analysis.DominantFrequency(data, dt)
	fmt.Printf("dominant frequency: %.3f hz (power %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	if lyapunov {
		cfg := meta.Config
		newSim := func() (*fluid.Simulator, error) { return cfg.NewSimulator(newLogger()) }
		lambda, err := analysis.LyapunovExponent(newSim, 1e-3, min(cfg.Run.Steps, 200))
		if err != nil {
			return err
		}
		fmt.Printf("lyapunov exponent: %.4f 1/s\n", lambda)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, series, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	xs, err := seriesColumn(series, xCol)
	if err != nil {
		return err
	}
	ys, err := seriesColumn(series, yCol)
	if err != nil {
		return err
	}

	fmt.Printf("phase plot: %s\n", meta.ID)
	fmt.Printf("x: %s, y: %s\n\n", xCol, yCol)
	fmt.Print(analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(xCol, xs, yCol, ys), 70, 20))

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(xs, ys, 800, 600, string(viz.ThemeOcean.Primary))), 0o644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgOut)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Config == nil {
		return fmt.Errorf("run %s has no stored config", meta.ID)
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames in run %s", args[0])
	}
	i := frameIndex
	if i < 0 {
		i += len(frames)
	}
	if i < 0 || i >= len(frames) {
		return fmt.Errorf("frame %d out of range (run has %d)", frameIndex, len(frames))
	}

	p := meta.Config.FluidParams()
	svg := export.FrameToSVG(frames[i], p.Bounds, p.RestDensity, p.SmoothingRadius/4, viz.ThemeOcean, svgWidth)
	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote frame %d (step %d) to %s\n", i, frames[i].Step, svgOut)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	switch exportWhat {
	case "frames":
		frames, err := st.LoadFrames(args[0])
		if err != nil {
			return err
		}
		return storage.WriteFramesCSV(os.Stdout, frames)
	case "series":
		series, err := st.LoadSeries(args[0])
		if err != nil {
			return err
		}
		return storage.WriteSeriesCSV(os.Stdout, series)
	default:
		return fmt.Errorf("unknown export %q: want frames or series", exportWhat)
	}
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	var frames []particles.Snapshot
	if withFrame {
		if frames, err = st.LoadFrames(args[0]); err != nil {
			return err
		}
	}
	return storage.ExportJSON(os.Stdout, meta, series, frames)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tSTEPS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, cfg.Fluid.Particles, cfg.Run.Steps, presetInfo[name])
	}
	return w.Flush()
}

func runMenu() error {
	return viz.RunMenu(newLogger())
}

func runLive(cmd *cobra.Command, args []string) error {
	if configFile == "" && preset == "" {
		return runMenu()
	}
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	sim, err := cfg.NewSimulator(newLogger())
	if err != nil {
		return err
	}
	return viz.Run(name, cfg, sim)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	sim, err := cfg.NewSimulator(log)
	if err != nil {
		return err
	}
	return gui.Run(name, cfg, sim, log)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	sim, err := cfg.NewSimulator(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	fmt.Printf("streaming %d particles on ws://%s/ws\n", cfg.Fluid.Particles, addr)
	return stream.NewServer(cfg, sim, log).ListenAndServe(ctx, addr)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}

	result, err := automation.RunScenario(cmd.Context(), sc, newLogger())
	if err != nil {
		return err
	}
	fmt.Printf("completed %d steps in %v\n", result.Steps, result.Elapsed)
	printMetrics(result.Metrics)

	if saveRun {
		cfg, err := sc.Resolve()
		if err != nil {
			return err
		}
		runID, err := saveResult(sc.Name, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepCount,
		Workers:   workers,
	}
	fmt.Printf("sweeping %s from %g to %g (%d runs of %d steps)...\n", sweepParam, sweepMin, sweepMax, sweepCount, cfg.Run.Steps)
	results, err := automation.RunSweep(cmd.Context(), sweep, newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tKINETIC_ENERGY\tMEAN_HEIGHT\tCLAMP_FRACTION\tSTABILITY\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.6f\t%.4f\t%.4f\t%.3f\n", r.ParamValue,
			r.Metrics["kinetic_energy"], r.Metrics["mean_height"], r.Metrics["clamp_fraction"], r.Metrics["stability"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:      cfg,
		NumTrials: trials,
		Seed:      seed,
		Workers:   workers,
	}, newLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tKINETIC_ENERGY\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%v\n", r.TrialID, r.LayoutSeed, r.Metrics["kinetic_energy"], r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}

// benchSearch times the same configuration with both neighbor searches.
func benchSearch(cmd *cobra.Command, args []string) error {
	counts := []int{125, 500, 1000}

	fmt.Printf("benchmarking neighbor search, %d steps per run\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tSEARCH\tCANDIDATES\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		for _, mode := range []string{config.SearchGrid, config.SearchBrute} {
			cfg := config.DefaultConfig()
			cfg.Fluid.Particles = n
			cfg.Performance.NeighborSearch = mode
			cfg.Performance.Workers = workers
			sim, err := cfg.NewSimulator(newLogger())
			if err != nil {
				return err
			}

			start := time.Now()
			candidates := 0.0
			for range benchSteps {
				if err := sim.Step(cfg.Fluid.TimeStep); err != nil {
					return err
				}
				candidates += sim.Stats().MeanCandidates
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%.1f\t%v\t%.0f\n", n, mode, candidates/float64(max(benchSteps, 1)),
				elapsed.Round(time.Microsecond), float64(benchSteps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
