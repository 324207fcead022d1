// Package gui is the raylib window for the fluid simulator. Particles are
// drawn as spheres inside the container's wireframe, and mouse buttons act
// as gestures on the plane through the container centre.
package gui
