package memory

import (
	"context"
	"sync"

	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/dao/criteria"
)

// Service implements an in-memory, thread-safe store for render jobs. Jobs
// are live objects shared with workers, so the store keeps pointers rather
// than copies; the job guards its own mutable state.
type Service struct {
	jobs map[string]*render.Job
	mux  sync.RWMutex
}

var _ dao.Service[string, render.Job] = (*Service)(nil)

func (s *Service) Save(_ context.Context, job *render.Job) error {
	if job == nil {
		return dao.ErrNilEntity
	}
	if job.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *Service) Load(_ context.Context, id string) (*render.Job, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	job, ok := s.jobs[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return job, nil
}

func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*render.Job, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*render.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if !criteria.FilterByState(string(job.GetState()), parameters) {
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

func New() *Service {
	return &Service{jobs: map[string]*render.Job{}}
}
