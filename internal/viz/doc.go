// Package viz provides terminal visualization of a ball table.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live top-down view stepping the table once per frame
//   - [NewInteractiveApp]: preset picker in front of the live view
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Render3D]: perspective wireframe of the table and ball axes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	M     - Toggle perspective view
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// # Recording
//
// The G key records the canvas into a GIF saved when recording stops.
package viz
