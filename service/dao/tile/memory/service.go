package memory

import (
	"context"
	"sync"

	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/dao/criteria"
)

// Service implements an in-memory, thread-safe store for render tiles. Tiles
// are stored and returned as snapshots: workers mutate the tiles they hold
// (state, attempts, timestamps), so sharing live pointers with concurrent
// Load/List callers would race.
type Service struct {
	tiles map[string]*render.Tile
	mux   sync.RWMutex
}

var _ dao.Service[string, render.Tile] = (*Service)(nil)

func (s *Service) Save(_ context.Context, tile *render.Tile) error {
	if tile == nil {
		return dao.ErrNilEntity
	}
	if tile.ID == "" {
		return dao.ErrInvalidID
	}

	snapshot := *tile
	s.mux.Lock()
	defer s.mux.Unlock()
	s.tiles[tile.ID] = &snapshot
	return nil
}

func (s *Service) Load(_ context.Context, id string) (*render.Tile, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	tile, ok := s.tiles[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	snapshot := *tile
	return &snapshot, nil
}

func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.tiles[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.tiles, id)
	return nil
}

func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*render.Tile, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*render.Tile, 0, len(s.tiles))
	for _, tile := range s.tiles {
		if !criteria.FilterByState(string(tile.State), parameters) {
			continue
		}
		snapshot := *tile
		out = append(out, &snapshot)
	}
	return out, nil
}

// ListByJob returns every stored tile belonging to the given job.
func (s *Service) ListByJob(_ context.Context, jobID string) ([]*render.Tile, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	var out []*render.Tile
	for _, tile := range s.tiles {
		if tile.JobID == jobID {
			snapshot := *tile
			out = append(out, &snapshot)
		}
	}
	return out, nil
}

func New() *Service {
	return &Service{tiles: map[string]*render.Tile{}}
}
