package render

// TileState represents the current state of a tile execution.
type TileState string

const (
	TileStatePending   TileState = "pending"
	TileStateScheduled TileState = "scheduled"
	TileStateRunning   TileState = "running"
	TileStateCompleted TileState = "completed"
	TileStateFailed    TileState = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (t TileState) IsTerminal() bool {
	return t == TileStateCompleted || t == TileStateFailed
}

// JobState represents the lifecycle state of a render job.
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

// IsTerminal reports whether the job has finished, successfully or not.
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed || s == JobStateCancelled
}
