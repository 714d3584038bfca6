// Package viz shows a portrait in the terminal.
//
// The package implements a TUI host using the Bubble Tea framework:
//
//   - [Model]: bubbletea model that forwards mouse motion and window size
//     to a [portrait.Renderer] and shows its latest frame
//   - [Canvas]: Braille-based paint.Surface, two by four dots per cell
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume the field
//	R     - Return every dot to its origin
//	T     - Cycle color themes
//	+/-   - Change the sampling stride
//	A     - Toggle ambient audio
//	Q     - Quit
package viz
