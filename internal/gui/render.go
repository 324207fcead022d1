package gui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/sphfluid/internal/interaction"
	"gonum.org/v1/gonum/spatial/r3"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	a.drawBounds()
	a.drawFluid()
	a.drawCursor()
	rl.EndMode3D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawBounds() {
	b := a.Sim.Params().Bounds
	size := r3.Sub(b.Max, b.Min)
	center := toRL(r3.Scale(0.5, r3.Add(b.Min, b.Max)))
	rl.DrawCubeWires(center, float32(size.X), float32(size.Y), float32(size.Z), ColFrame)
}

// drawFluid draws one sphere per particle, shaded from sparse to dense.
func (a *App) drawFluid() {
	p := a.Sim.Params()
	r := float32(0.25 * p.SmoothingRadius)
	for _, st := range a.Snap.States {
		rl.DrawSphere(toRL(st.Position), r, densityColor(st.Density/p.RestDensity))
	}
}

// densityColor blends ColSparse into ColDense as the density ratio runs from
// 0.5 to 1.5.
func densityColor(ratio float64) rl.Color {
	t := float32(min(max(ratio-0.5, 0), 1))
	mix := func(x, y uint8) uint8 { return uint8(float32(x) + t*(float32(y)-float32(x))) }
	return rl.NewColor(
		mix(ColSparse.R, ColDense.R),
		mix(ColSparse.G, ColDense.G),
		mix(ColSparse.B, ColDense.B),
		mix(ColSparse.A, ColDense.A),
	)
}

func (a *App) drawCursor() {
	if a.CursorIntent == interaction.None {
		return
	}
	pos := toRL(a.Cursor)
	r := float32(a.Cfg.Interaction.Radius)
	rl.DrawCircle3D(pos, r, rl.NewVector3(0, 0, 1), 0, rl.NewColor(255, 255, 255, 100))
	rl.DrawCircle3D(pos, 0.2*r, rl.NewVector3(0, 0, 1), 0, rl.NewColor(255, 255, 255, 50))
}

func (a *App) DrawHUD() {
	a.drawText("sphfluid", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Title), 160, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	switch {
	case a.Err != nil:
		status, col = "ERROR", rl.Red
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	stats := a.Sim.Stats()
	lines := []string{
		fmt.Sprintf("step       %d", stats.Step),
		fmt.Sprintf("particles  %d", a.Sim.Len()),
		fmt.Sprintf("clamped    %d", stats.Clamped),
		fmt.Sprintf("candidates %.1f", stats.MeanCandidates),
		fmt.Sprintf("step time  %s", stats.Elapsed),
	}
	if a.CursorIntent != interaction.None {
		lines = append(lines, fmt.Sprintf("gesture    %s", strings.ToUpper(a.CursorIntent.String())))
	}
	for i, l := range lines {
		a.drawText(l, 30, 80+20*i, 14, ColText)
	}
	if a.Err != nil {
		a.drawText(a.Err.Error(), 30, 80+20*len(lines)+10, 14, rl.Red)
	}

	a.DrawTelemetry()
	a.drawText("[SPACE] PAUSE  [R] RESET  [LMB] REPEL  [RMB] ATTRACT  [SHIFT+LMB] PUSH  [Q] QUIT", 520, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots the kinetic energy history as a normalized line strip.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
