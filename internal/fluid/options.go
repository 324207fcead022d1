package fluid

import (
	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/particles"
	"github.com/san-kum/sphfluid/internal/spatial"
	"gonum.org/v1/gonum/spatial/r3"
)

// Option configures a Simulator at construction.
type Option func(*Simulator)

// WithLogger routes numerical-fault warnings to log.
func WithLogger(log logr.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// WithWorkers bounds the goroutines used per pass. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// WithSearcher replaces the default hash grid, e.g. with spatial.NewBruteForce().
func WithSearcher(search spatial.Searcher) Option {
	return func(s *Simulator) { s.search = search }
}

// WithLayout sets the starting configuration used by New and Reset.
func WithLayout(layout particles.Layout) Option {
	return func(s *Simulator) { s.layout = layout }
}

// WithMinChunk sets the smallest index range a pass hands to one goroutine.
func WithMinChunk(n int) Option {
	return func(s *Simulator) { s.minChunk = n }
}

// DefaultLayout is the grid cube used when no layout is given: spacing 0.8h,
// centered horizontally, three quarters up the box.
func DefaultLayout(p Params) particles.Layout {
	b := p.Bounds
	size := r3.Sub(b.Max, b.Min)
	return particles.GridLayout{
		Spacing: 0.8 * p.SmoothingRadius,
		Center: r3.Vec{
			X: b.Min.X + 0.5*size.X,
			Y: b.Min.Y + 0.75*size.Y,
			Z: b.Min.Z + 0.5*size.Z,
		},
	}
}
