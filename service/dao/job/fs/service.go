// Package fs implements a filesystem-backed job store. Jobs are persisted as
// JSON snapshots through the abstract file system, so finished renders can be
// inspected (or a history kept) across process restarts. The in-memory store
// remains the renderer's default; this store suits archival and tooling.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/dao/criteria"
)

// Service implements a filesystem-based job store.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, render.Job] = (*Service)(nil)

// Save persists a consistent snapshot of the job as JSON.
func (s *Service) Save(ctx context.Context, job *render.Job) error {
	if job == nil {
		return dao.ErrNilEntity
	}
	if job.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := job.Snapshot()
	data, err := json.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	filePath := s.jobPath(job.ID)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save job to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a job snapshot from the filesystem.
func (s *Service) Load(ctx context.Context, id string) (*render.Job, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.jobPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if job exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var job render.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job data: %w", err)
	}
	return &job, nil
}

// Delete removes a job snapshot from the filesystem.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.jobPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if job exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}

	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete job file %s: %w", filePath, err)
	}
	return nil
}

// List returns every stored job, optionally filtered by state.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*render.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list job files: %w", err)
	}

	var jobs []*render.Job
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var job render.Job
		if err := json.Unmarshal(data, &job); err != nil {
			continue
		}
		if !criteria.FilterByState(string(job.State), parameters) {
			continue
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

// jobPath returns the file path for a job; the job ID may contain slashes
// (scene/uuid), which map to sub-directories.
func (s *Service) jobPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem job store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}

	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fs,
	}, nil
}
