package types

// ExecutionStatus represents the current state of a step within a run
type ExecutionStatus string

const (
	StatusPending ExecutionStatus = "pending" // Not reached yet in the current run
	StatusRunning ExecutionStatus = "running"
	StatusSuccess ExecutionStatus = "success"
	StatusFailure ExecutionStatus = "failure"
)

// IsTerminal reports whether the status ends a step's lifecycle for the run.
func (s ExecutionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Valid reports whether s is one of the known statuses.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusSuccess, StatusFailure:
		return true
	}
	return false
}

// Label returns the display label shown next to a node in the execution log.
func (s ExecutionStatus) Label() string {
	switch s {
	case StatusRunning:
		return "⏳ En cours..."
	case StatusSuccess:
		return "✅ Succès"
	case StatusFailure:
		return "❌ Échec"
	default:
		return ""
	}
}

// Handle names the output port an edge leaves its source node from
type Handle string

const (
	HandleDefault Handle = "default"
	HandleSuccess Handle = "success"
	HandleFailure Handle = "failure"
)

// Normalize maps the empty handle to HandleDefault.
func (h Handle) Normalize() Handle {
	if h == "" {
		return HandleDefault
	}
	return h
}

// HandleFor returns the conditional output handle selected by a terminal status.
func HandleFor(status ExecutionStatus) Handle {
	if status == StatusSuccess {
		return HandleSuccess
	}
	return HandleFailure
}
