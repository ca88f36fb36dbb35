package tui

// StatusKind picks the colour of the status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	// StatusWarn marks something the user can act on, like an empty result.
	StatusWarn
	// StatusError marks an action that failed outright.
	StatusError
)
