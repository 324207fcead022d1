// Package export renders stored frames and series as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/sphfluid/internal/particles"
	"github.com/san-kum/sphfluid/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

const background = "#0a0a0a"

// FrameToSVG draws a side view of snap inside bounds, dropping z. Each
// particle is a circle of the given world radius shaded by density relative
// to rho0. width is the image width in pixels; the height follows the box.
func FrameToSVG(snap particles.Snapshot, bounds r3.Box, rho0, radius float64, theme viz.Theme, width int) string {
	size := r3.Sub(bounds.Max, bounds.Min)
	if size.X <= 0 || size.Y <= 0 || width <= 0 {
		return ""
	}
	scale := float64(width) / size.X
	height := int(size.Y*scale + 0.5)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<rect width="%d" height="%d" fill="none" stroke="%s"/>
`, width, height, width, height, background, width, height, theme.Muted))

	r := radius * scale
	for _, st := range snap.States {
		cx := (st.Position.X - bounds.Min.X) * scale
		cy := float64(height) - (st.Position.Y-bounds.Min.Y)*scale
		heat := 0.0
		if rho0 > 0 {
			heat = st.Density / rho0
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, r, theme.DensityColor(heat)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws ys against xs as one polyline, padded by 10% of each range.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range n {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i := range n {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
