package gui

import (
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-logr/logr"
	"github.com/san-kum/sphfluid/internal/config"
	"github.com/san-kum/sphfluid/internal/fluid"
	"github.com/san-kum/sphfluid/internal/interaction"
	"github.com/san-kum/sphfluid/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	screenW = 1280
	screenH = 720

	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	maxTelemetry = 200
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColFrame   = rl.NewColor(90, 90, 90, 160)
	ColSparse  = rl.NewColor(120, 200, 255, 230)
	ColDense   = rl.NewColor(20, 60, 255, 230)
)

// App is the raylib fluid viewer. The mouse drives gestures on the plane
// through the container centre: left repels, right attracts, shift+left
// pushes.
type App struct {
	Title string
	Cfg   *config.Config
	Sim   *fluid.Simulator
	Snap  particles.Snapshot

	Camera       rl.Camera3D
	CamPosTarget rl.Vector3
	CamTgtTarget rl.Vector3
	Running      bool
	Font         rl.Font
	Telemetry    []float64

	Cursor       r3.Vec
	CursorIntent interaction.Intent
	Err          error

	log  logr.Logger
	quit bool
}

func initWindow(title string) {
	rl.InitWindow(screenW, screenH, title)
	rl.SetTargetFPS(int32(config.DefaultRate))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func toRL(v r3.Vec) rl.Vector3 { return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z)) }

func fromRL(v rl.Vector3) r3.Vec { return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)} }

// NewApp frames the camera on the simulator's container. The window must
// already be open.
func NewApp(title string, cfg *config.Config, sim *fluid.Simulator, log logr.Logger) *App {
	b := sim.Params().Bounds
	center := r3.Scale(0.5, r3.Add(b.Min, b.Max))
	size := r3.Sub(b.Max, b.Min)
	dist := 2.2 * max(size.X, size.Y, size.Z)

	target := toRL(center)
	pos := toRL(r3.Add(center, r3.Vec{Y: 0.3 * dist, Z: dist}))
	app := &App{
		Title:        title,
		Cfg:          cfg,
		Sim:          sim,
		Snap:         sim.State(),
		Camera:       rl.NewCamera3D(pos, target, rl.NewVector3(0, 1, 0), 45.0, rl.CameraPerspective),
		CamPosTarget: pos,
		CamTgtTarget: target,
		Running:      true,
		Font:         loadFont(),
		Telemetry:    make([]float64, 0, maxTelemetry),
		log:          log,
	}
	return app
}

// Run opens a window on sim and blocks until it is closed.
func Run(title string, cfg *config.Config, sim *fluid.Simulator, log logr.Logger) error {
	initWindow(title)
	defer rl.CloseWindow()
	app := NewApp(title, cfg, sim, log)
	app.RunLoop()
	return app.Err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}

	a.updateCamera()
	a.updatePointer()

	if a.Running {
		a.step()
	}
}

func (a *App) reset() {
	a.Sim.Reset()
	a.Sim.SnapshotInto(&a.Snap)
	a.Telemetry = a.Telemetry[:0]
	a.Err = nil
	a.Running = true
}

func (a *App) step() {
	if err := a.Sim.Step(a.Sim.Params().TimeStep); err != nil {
		a.Err, a.Running = err, false
		a.log.Error(err, "step failed", "step", a.Sim.Stats().Step)
		return
	}
	a.Sim.SnapshotInto(&a.Snap)
	a.Telemetry = append(a.Telemetry, a.Snap.KineticEnergy(a.Sim.Params().ParticleMass))
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

// updateCamera moves the camera targets and eases the camera toward them.
func (a *App) updateCamera() {
	b := a.Sim.Params().Bounds
	speed := float32(0.02 * r3.Norm(r3.Sub(b.Max, b.Min)))

	if rl.IsKeyDown(rl.KeyW) {
		a.CamPosTarget.Y += speed
	}
	if rl.IsKeyDown(rl.KeyS) {
		a.CamPosTarget.Y -= speed
	}
	if rl.IsKeyDown(rl.KeyA) {
		a.CamPosTarget.X -= speed
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.CamPosTarget.X += speed
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		zoom := wheel * 5 * speed
		diff := rl.Vector3Subtract(a.CamTgtTarget, a.CamPosTarget)
		if rl.Vector3Length(diff) > 2*speed || zoom < 0 {
			a.CamPosTarget = rl.Vector3Add(a.CamPosTarget, rl.Vector3Scale(rl.Vector3Normalize(diff), zoom))
		}
	}

	lerp := min(5*rl.GetFrameTime(), 1)
	a.Camera.Position = rl.Vector3Lerp(a.Camera.Position, a.CamPosTarget, lerp)
	a.Camera.Target = rl.Vector3Lerp(a.Camera.Target, a.CamTgtTarget, lerp)
}

// updatePointer turns the mouse into a gesture for the next step.
func (a *App) updatePointer() {
	buttons := interaction.Buttons{
		Primary:   rl.IsMouseButtonDown(rl.MouseLeftButton),
		Secondary: rl.IsMouseButtonDown(rl.MouseRightButton),
		Modifier:  rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift),
	}
	a.CursorIntent = buttons.Intent()
	if a.CursorIntent == interaction.None {
		return
	}

	b := a.Sim.Params().Bounds
	ray := rl.GetMouseRay(rl.GetMousePosition(), a.Camera)
	hit, ok := interaction.PlaneHit(fromRL(ray.Position), fromRL(ray.Direction), 0.5*(b.Min.Z+b.Max.Z))
	if !ok {
		a.CursorIntent = interaction.None
		return
	}
	a.Cursor = hit

	g := interaction.Gesture{
		Intent:    a.CursorIntent,
		Position:  hit,
		Direction: a.Cfg.Interaction.Direction.Vec(),
	}.WithDefaults(a.Cfg.Interaction.Radius, a.Cfg.Interaction.Strength)
	if err := g.Apply(a.Sim); err != nil {
		a.log.V(1).Info("gesture rejected", "intent", g.Intent, "err", err.Error())
	}
}
