package tui

// StateChangedMsg is sent when the table store has changed outside the
// update loop.
type StateChangedMsg struct{}

// FilesChangedMsg is sent when CSV files appear in or vanish from the import
// directory.
type FilesChangedMsg struct{}

// ImportDoneMsg is sent when an import has finished.
type ImportDoneMsg struct {
	Path  string
	Count int
	Error error
}

// ExportDoneMsg is sent when an export has finished.
type ExportDoneMsg struct {
	Path  string
	Error error
}

// noticeExpiredMsg clears the notice with the given id.
type noticeExpiredMsg struct {
	id int
}
