// Package spatial provides neighbor search over particle positions.
//
// [Grid] is a uniform hash grid rebuilt from scratch every step. Its queries
// return a superset of the true neighbors within one cell size; callers filter
// by distance. [BruteForce] answers the same queries by scanning every index.
package spatial

import (
	"iter"
	"math"

	"github.com/san-kum/sphfluid/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Positions is the read-only view of a particle set the index is built from.
type Positions interface {
	Len() int
	Position(i int) r3.Vec
}

// Searcher answers neighborhood queries against the last rebuilt positions.
type Searcher interface {
	Rebuild(src Positions, cellSize float64) error
	Neighbors(pos r3.Vec) iter.Seq[int]
	Collect(pos r3.Vec, dst []int) []int
}

const (
	laneBits = 21
	laneMask = 1<<laneBits - 1
)

// Cell is a discretized grid coordinate.
type Cell struct {
	X, Y, Z int
}

// Key packs the cell into a uint64, 21 bits per axis. Cells farther than 2^20
// from the origin alias onto nearer ones, which only merges buckets.
func (c Cell) Key() uint64 {
	return uint64(c.X)&laneMask |
		(uint64(c.Y)&laneMask)<<laneBits |
		(uint64(c.Z)&laneMask)<<(2*laneBits)
}

// CellOf floors pos / cellSize on every axis.
func CellOf(pos r3.Vec, cellSize float64) Cell {
	return Cell{
		X: floorDiv(pos.X, cellSize),
		Y: floorDiv(pos.Y, cellSize),
		Z: floorDiv(pos.Z, cellSize),
	}
}

func floorDiv(x, size float64) int {
	f := math.Floor(x / size)
	// NaN/Inf positions land in cell 0
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// Grid maps packed cell keys to buckets of particle indices.
type Grid struct {
	cellSize float64
	cells    map[uint64][]int
	used     []uint64
	count    int
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[uint64][]int)}
}

// Stats summarizes bucket occupancy after the last rebuild.
type Stats struct {
	Particles     int
	OccupiedCells int
	MaxBucket     int
}

// CellSize returns the cell size of the last rebuild.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Clear empties every bucket, keeping their capacity.
func (g *Grid) Clear() {
	for _, k := range g.used {
		g.cells[k] = g.cells[k][:0]
	}
	g.used = g.used[:0]
	g.count = 0
}

// Rebuild clears the grid and reinserts every position of src.
func (g *Grid) Rebuild(src Positions, cellSize float64) error {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return dynamo.Invalid("cell_size", cellSize, "must be positive and finite")
	}
	if g.cells == nil {
		g.cells = make(map[uint64][]int)
	}

	// cell size changes re-key everything; drop the old buckets
	if cellSize != g.cellSize {
		clear(g.cells)
		g.used = g.used[:0]
		g.cellSize = cellSize
	}
	g.Clear()

	n := src.Len()
	for i := 0; i < n; i++ {
		k := CellOf(src.Position(i), cellSize).Key()
		bucket := g.cells[k]
		if len(bucket) == 0 {
			g.used = append(g.used, k)
		}
		g.cells[k] = append(bucket, i)
	}
	g.count = n
	return nil
}

// Neighbors lazily yields the indices in the 3x3x3 cell block around pos.
func (g *Grid) Neighbors(pos r3.Vec) iter.Seq[int] {
	return func(yield func(int) bool) {
		if g.count == 0 {
			return
		}
		keys, n := g.blockKeys(pos)
		for _, k := range keys[:n] {
			for _, i := range g.cells[k] {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// Collect appends the indices in the 3x3x3 cell block around pos to dst.
func (g *Grid) Collect(pos r3.Vec, dst []int) []int {
	if g.count == 0 {
		return dst
	}
	keys, n := g.blockKeys(pos)
	for _, k := range keys[:n] {
		dst = append(dst, g.cells[k]...)
	}
	return dst
}

// blockKeys returns the distinct keys of the 27-cell block. Aliased keys are
// deduplicated so no index is yielded twice.
func (g *Grid) blockKeys(pos r3.Vec) (keys [27]uint64, n int) {
	c := CellOf(pos, g.cellSize)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				k := Cell{c.X + dx, c.Y + dy, c.Z + dz}.Key()
				if !containsKey(keys[:n], k) {
					keys[n] = k
					n++
				}
			}
		}
	}
	return keys, n
}

func containsKey(keys []uint64, k uint64) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

// Bucket returns the indices stored in the cell containing pos. The slice is
// owned by the grid and valid until the next rebuild.
func (g *Grid) Bucket(pos r3.Vec) []int {
	return g.cells[CellOf(pos, g.cellSize).Key()]
}

// Occupied yields every non-empty bucket with its key.
func (g *Grid) Occupied() iter.Seq2[uint64, []int] {
	return func(yield func(uint64, []int) bool) {
		for _, k := range g.used {
			if !yield(k, g.cells[k]) {
				return
			}
		}
	}
}

// Stats reports occupancy of the last rebuild.
func (g *Grid) Stats() Stats {
	st := Stats{Particles: g.count, OccupiedCells: len(g.used)}
	for _, k := range g.used {
		if n := len(g.cells[k]); n > st.MaxBucket {
			st.MaxBucket = n
		}
	}
	return st
}
