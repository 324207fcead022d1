package metrics

import (
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/particles"
)

// ClampFraction is the mean share of particles repaired per step. A healthy
// run stays at zero.
type ClampFraction struct {
	name    string
	sum     float64
	samples int
}

func NewClampFraction() *ClampFraction {
	return &ClampFraction{name: "clamp_fraction"}
}

func (c *ClampFraction) Name() string {
	return c.name
}

func (c *ClampFraction) Observe(_ particles.Snapshot, stats fluid.StepStats) {
	c.sum += stats.ClampedFraction()
	c.samples++
}

func (c *ClampFraction) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ClampFraction) Reset() {
	c.sum = 0
	c.samples = 0
}
