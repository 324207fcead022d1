package spatial

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r3"
)

// BruteForce yields every index for every query. It is the O(n^2) baseline
// and the oracle the grid is tested against.
type BruteForce struct {
	n int
}

// NewBruteForce creates an empty brute-force searcher.
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

// Rebuild records the particle count; cellSize is ignored.
func (b *BruteForce) Rebuild(src Positions, _ float64) error {
	b.n = src.Len()
	return nil
}

// Neighbors yields 0..n-1.
func (b *BruteForce) Neighbors(_ r3.Vec) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < b.n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Collect appends 0..n-1 to dst.
func (b *BruteForce) Collect(_ r3.Vec, dst []int) []int {
	for i := 0; i < b.n; i++ {
		dst = append(dst, i)
	}
	return dst
}

// WithinRadius returns every index of src whose position lies within radius
// of pos, by exhaustive search.
func WithinRadius(src Positions, pos r3.Vec, radius float64) []int {
	var out []int
	r2 := radius * radius
	for i := 0; i < src.Len(); i++ {
		if r3.Norm2(r3.Sub(src.Position(i), pos)) <= r2 {
			out = append(out, i)
		}
	}
	return out
}

// Points adapts a plain slice to Positions.
type Points []r3.Vec

func (p Points) Len() int              { return len(p) }
func (p Points) Position(i int) r3.Vec { return p[i] }
