package app

// Message types for the bubbletea app.

// RefreshMsg asks for the repository to be re-read, typically because
// files changed outside grain.
type RefreshMsg struct {
	Reason string
}

// EditorFinishedMsg is sent when the external editor exits.
type EditorFinishedMsg struct {
	Path string
	Err  error
}

// WatchErrorMsg is sent when the file watcher fails. Watching continues.
type WatchErrorMsg struct {
	Err error
}
