package analysis

import (
	"strings"
)

// PhasePortrait2D holds two series plotted against each other
type PhasePortrait2D struct {
	XName, YName string
	Points       []struct{ X, Y float64 }
}

// NewPhasePortrait pairs xs and ys up to the shorter length.
func NewPhasePortrait(xName string, xs []float64, yName string, ys []float64) *PhasePortrait2D {
	n := min(len(xs), len(ys))
	p := &PhasePortrait2D{
		XName:  xName,
		YName:  yName,
		Points: make([]struct{ X, Y float64 }, n),
	}
	for i := 0; i < n; i++ {
		p.Points[i].X, p.Points[i].Y = xs[i], ys[i]
	}
	return p
}

func span(lo, hi float64) (float64, float64) {
	r := hi - lo
	if r == 0 {
		r = 1
	}
	return lo - 0.1*r, hi + 0.1*r
}

// PhasePortraitToASCII renders the portrait into width x height runes.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	minX, maxX = span(minX, maxX)
	minY, maxY = span(minY, maxY)

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	for _, p := range portrait.Points {
		col := int((p.X - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int((p.Y-minY)/(maxY-minY)*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	sb.WriteString(portrait.YName + "\n")
	for _, row := range canvas {
		sb.WriteString("│")
		sb.WriteString(string(row))
		sb.WriteString("\n")
	}
	sb.WriteString("└" + strings.Repeat("─", width) + " " + portrait.XName + "\n")
	return sb.String()
}
