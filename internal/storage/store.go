package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/metrics"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	seriesFile   = "series.csv"
)

var (
	frameHeader = []string{"step", "particle", "x", "y", "z", "vx", "vy", "vz", "density"}

	ErrMalformed = errors.New("storage: malformed run file")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Particles int                `json:"particles"`
	Frames    int                `json:"frames"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Config    *config.Config     `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is everything a finished simulation hands to the store.
type Run struct {
	Preset  string
	Config  *config.Config
	Steps   int
	Elapsed time.Duration
	Metrics map[string]float64
	Frames  []particles.Snapshot
	Series  *metrics.Series
}

func (s *Store) newRunDir(preset string) (string, string, error) {
	if preset == "" {
		preset = "custom"
	}
	base := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runID := base
	for n := 1; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) Save(run *Run) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.newRunDir(run.Preset)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    run.Preset,
		Timestamp: time.Now(),
		Steps:     run.Steps,
		Frames:    len(run.Frames),
		Elapsed:   run.Elapsed,
		Config:    run.Config,
		Metrics:   run.Metrics,
	}
	if run.Config != nil {
		meta.Particles = run.Config.Fluid.Particles
	}

	err = writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}

	err = writeFile(filepath.Join(runDir, framesFile), func(w io.Writer) error {
		return WriteFramesCSV(w, run.Frames)
	})
	if err != nil {
		return "", err
	}

	if run.Series != nil {
		err = writeFile(filepath.Join(runDir, seriesFile), func(w io.Writer) error {
			return WriteSeriesCSV(w, run.Series)
		})
		if err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseFloats(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, f := range record {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out[i] = v
	}
	return out, nil
}

// LoadFrames reads the recorded snapshots of a run, in step order.
func (s *Store) LoadFrames(runID string) ([]particles.Snapshot, error) {
	records, err := s.readCSV(runID, framesFile)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []particles.Snapshot{}, nil
	}

	var frames []particles.Snapshot
	for _, record := range records[1:] {
		if len(record) != len(frameHeader) {
			return nil, fmt.Errorf("%w: %s has %d fields", ErrMalformed, framesFile, len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, err
		}

		step := int(vals[0])
		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, particles.Snapshot{Step: step})
		}
		last := &frames[len(frames)-1]
		last.States = append(last.States, particles.State{
			Position: r3.Vec{X: vals[2], Y: vals[3], Z: vals[4]},
			Velocity: r3.Vec{X: vals[5], Y: vals[6], Z: vals[7]},
			Density:  vals[8],
		})
	}
	return frames, nil
}

// LoadSeries reads the per-step metric series of a run.
func (s *Store) LoadSeries(runID string) (*metrics.Series, error) {
	records, err := s.readCSV(runID, seriesFile)
	if err != nil {
		return nil, err
	}

	series := &metrics.Series{}
	if meta, err := s.Load(runID); err == nil && meta.Config != nil {
		series.Mass = meta.Config.Fluid.ParticleMass
	}
	if len(records) < 2 {
		return series, nil
	}

	for _, record := range records[1:] {
		if len(record) != len(metrics.SeriesColumns)+1 {
			return nil, fmt.Errorf("%w: %s has %d fields", ErrMalformed, seriesFile, len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, err
		}
		series.Steps = append(series.Steps, int(vals[0]))
		series.Rows = append(series.Rows, vals[1:])
	}
	return series, nil
}
