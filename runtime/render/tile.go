package render

import (
	"fmt"
	"time"

	"github.com/hmaddocks/raytracing/internal/clock"
)

// Tile is a rectangular image region rendered as one unit of work. Bounds are
// half-open: pixels x in [X0, X1) and y in [Y0, Y1).
type Tile struct {
	ID          string     `json:"id"`
	JobID       string     `json:"jobId"`
	X0          int        `json:"x0"`
	Y0          int        `json:"y0"`
	X1          int        `json:"x1"`
	Y1          int        `json:"y1"`
	State       TileState  `json:"state"`
	Error       string     `json:"error,omitempty"`
	Attempts    int        `json:"attempts,omitempty"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	RunAfter    *time.Time `json:"runAfter,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
}

// Pixels returns the number of pixels covered by the tile.
func (t *Tile) Pixels() int {
	return (t.X1 - t.X0) * (t.Y1 - t.Y0)
}

// Start marks the tile as running.
func (t *Tile) Start() {
	now := clock.Now()
	t.StartedAt = &now
	t.State = TileStateRunning
}

// Complete marks the tile as completed.
func (t *Tile) Complete() {
	now := clock.Now()
	t.EndedAt = &now
	t.State = TileStateCompleted
}

// Fail marks the tile as failed and records the error.
func (t *Tile) Fail(err error) {
	now := clock.Now()
	t.EndedAt = &now
	if err != nil {
		t.Error = err.Error()
	}
	t.State = TileStateFailed
}

// Grid splits a width x height image into tiles of at most size x size
// pixels; the last row and column are clipped to the image bounds.
func Grid(jobID string, width, height, size int) []*Tile {
	if size <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	var tiles []*Tile
	index := 0
	for y := 0; y < height; y += size {
		y1 := y + size
		if y1 > height {
			y1 = height
		}
		for x := 0; x < width; x += size {
			x1 := x + size
			if x1 > width {
				x1 = width
			}
			tiles = append(tiles, &Tile{
				ID:          tileID(jobID, index),
				JobID:       jobID,
				X0:          x,
				Y0:          y,
				X1:          x1,
				Y1:          y1,
				State:       TileStatePending,
				ScheduledAt: clock.Now(),
			})
			index++
		}
	}
	return tiles
}

func tileID(jobID string, index int) string {
	return fmt.Sprintf("%s/tile-%04d", jobID, index)
}
