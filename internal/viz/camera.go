package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	zoomStep = 1.1
	minZoom  = 0.2
	maxZoom  = 8
)

// Camera is an orthographic side view fitted to a bounding box: it drops z
// and looks down the z axis.
type Camera struct {
	Zoom float64

	center r3.Vec
	extent float64
}

// NewCamera frames b so that its largest side fills the viewport at zoom 1.
func NewCamera(b r3.Box) *Camera {
	size := r3.Sub(b.Max, b.Min)
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if extent <= 0 {
		extent = 1
	}
	return &Camera{
		Zoom:   1,
		center: r3.Scale(0.5, r3.Add(b.Min, b.Max)),
		extent: extent,
	}
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(maxZoom, c.Zoom*zoomStep) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(minZoom, c.Zoom/zoomStep) }

// Project maps a world point to dot coordinates on a w x h viewport. ok is
// false when the point falls outside it.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, ok bool) {
	q := r3.Sub(p, c.center)
	scale := c.Zoom * float64(min(w, h)-1) / c.extent
	x = w/2 + int(math.Round(q.X*scale))
	y = h/2 - int(math.Round(q.Y*scale))
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}

// boxEdges lists the 12 edges of b as corner pairs.
func boxEdges(b r3.Box) [12][2]r3.Vec {
	var corners [8]r3.Vec
	for i := range corners {
		corners[i] = b.Min
		if i&1 != 0 {
			corners[i].X = b.Max.X
		}
		if i&2 != 0 {
			corners[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			corners[i].Z = b.Max.Z
		}
	}
	var edges [12][2]r3.Vec
	n := 0
	for i := range corners {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				edges[n] = [2]r3.Vec{corners[i], corners[i|bit]}
				n++
			}
		}
	}
	return edges
}
