package event

import "time"

// Event types published by the renderer.
const (
	TypeJobStarted    = "job-started"
	TypeJobCompleted  = "job-completed"
	TypeJobFailed     = "job-failed"
	TypeJobCancelled  = "job-cancelled"
	TypeTileCompleted = "tile-completed"
	TypeTileFailed    = "tile-failed"
)

// Context identifies the render job and tile an event relates to.
type Context struct {
	JobID       string `json:"jobID"`
	TileID      string `json:"tileID,omitempty"`
	EventType   string `json:"eventType"`
	Scene       string `json:"scene,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
