// Package viz provides the terminal front end for the particle bath.
//
// The package implements an interactive view using the Bubble Tea
// framework:
//
//   - [Model]: live view with parameter tuning and pointer interaction
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - Theme selection with built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Respawn the particle collection
//	Tab   - Select a parameter, Up/Down to adjust
//	P     - Cycle fluid presets
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// Dragging with the mouse pulls nearby particles toward the cursor;
// dragging with the right button pushes them away.
//
// # Recording
//
// The G key records the canvas to fluid.gif in the current directory.
package viz
