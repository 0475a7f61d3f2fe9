// Package ui renders a grain session for the terminal.
//
// Render takes a Params value built from engine.View and returns the whole
// screen: header, the list pane, the diff pane and the status line. It is
// pure; scrolling positions come from the engine's cursors, so Layout must
// be used to size the engine's viewport consistently with what is drawn.
package ui
