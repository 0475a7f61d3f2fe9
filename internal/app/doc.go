// Package app provides the Bubble Tea model for grain.
//
// Model decodes key presses through a configurable KeyMap into engine
// actions, owns the text input used for commit messages, rewording and
// file search, runs the external editor and reacts to file system
// refreshes. All repository logic lives in internal/engine; rendering
// lives in internal/ui.
package app
