package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose int
	// Simulation inputs
	configFile    string
	preset        string
	steps         int
	particleCount int
	workers       int
	search        string
	frameEvery    int
	setParams     []string
	// Analysis
	plotColumn string
	column     string
	xCol       string
	yCol       string
	lyapunov   bool
	withFrame  bool
	exportWhat string
	frameIndex int
	svgOut     string
	svgWidth   int
	// Automation
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepCount int
	trials     int
	seed       uint64
	saveRun    bool
	// Serving
	addr string
	// Benchmark
	benchSteps int
)

// main registers the commands and runs the root command. With no subcommand
// it opens the terminal preset picker. It exits 1 on any command error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "sphfluid",
		Short:        "interactive SPH fluid simulation",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sphfluid", "data directory")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log verbosity (repeat for more)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&frameEvery, "frame-every", 0, "record a frame every n steps (default from config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the per-step series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "", "plot one series column (default all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a run series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "mean_height", "series column to analyze")
	analyzeCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate the Lyapunov exponent of the run's configuration")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot two series columns against each other",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xCol, "x", "mean_height", "column for the x axis")
	phaseCmd.Flags().StringVar(&yCol, "y", "kinetic_energy", "column for the y axis")
	phaseCmd.Flags().StringVar(&svgOut, "svg", "", "also write the portrait to an SVG file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames or series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&exportWhat, "what", "frames", "frames or series")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&withFrame, "frames", false, "include recorded frames")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a recorded frame to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame index (negative counts from the end)")
	svgCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with the terminal viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run with the desktop viewer",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(guiCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the simulation over WebSocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRun, "save", false, "save the run to the data directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "viscosity", "parameter to sweep ("+strings.Join(config.TunableParams(), ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2.0, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "rerun a configuration from random layouts",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	monteCarloCmd.Flags().Uint64Var(&seed, "seed", 1, "seed for the layout seeds")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare grid and brute-force neighbor search",
		Args:  cobra.NoArgs,
		RunE:  benchSearch,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "steps per measurement")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		svgCmd, presetsCmd, liveCmd, guiCmd, serveCmd, scenarioCmd, sweepCmd, monteCarloCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (default from config)")
	cmd.Flags().IntVar(&particleCount, "particles", 0, "particle count (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&search, "search", "", "neighbor search: grid or brute")
	cmd.Flags().StringSliceVar(&setParams, "set", nil, "override a parameter, e.g. --set viscosity=2")
}

func newLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbose})
}

// loadConfig resolves --config, then --preset, then the defaults, and applies
// the command-line overrides. It returns the config and a name for the run.
func loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		name string
	)
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg, name = c, strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	default:
		cfg, name = config.DefaultConfig(), "default"
	}

	if steps > 0 {
		cfg.Run.Steps = steps
	}
	if particleCount > 0 {
		cfg.Fluid.Particles = particleCount
	}
	if workers > 0 {
		cfg.Performance.Workers = workers
	}
	if search != "" {
		cfg.Performance.NeighborSearch = search
	}
	if frameEvery > 0 {
		cfg.Run.FrameEvery = frameEvery
	}
	for _, kv := range setParams {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, "", fmt.Errorf("bad --set %q: want name=value", kv)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, "", fmt.Errorf("bad --set %q: %w", kv, err)
		}
		if err := cfg.SetParam(strings.TrimSpace(k), f); err != nil {
			return nil, "", err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}
