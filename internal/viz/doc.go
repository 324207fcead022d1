// Package viz provides the terminal viewer for the fluid simulator.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live viewer that steps a [fluid.Simulator] on every tick
//   - [NewMenu]: preset picker with a parameter page in front of the viewer
//   - [Canvas]: braille dot canvas, shaded by particle density
//   - [Camera]: orthographic x/y side view fitted to the container
//
// # Key Bindings
//
//	Space    - Pause/Resume simulation
//	R        - Reset to the starting layout
//	Arrows   - Move the gesture cursor in x/y, W/S in z
//	A/E/P    - Attract, repel or push at the cursor
//	+/-      - Zoom
//	T        - Cycle color themes
//	?        - Show help overlay
//
// Gestures queue forces on the simulator; they act on the next step only.
package viz
