package renderer

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hmaddocks/raytracing/internal/idgen"
	"github.com/hmaddocks/raytracing/model"
	"github.com/hmaddocks/raytracing/model/shape"
	"github.com/hmaddocks/raytracing/progress"
	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/event"
	"github.com/hmaddocks/raytracing/service/messaging"
	"github.com/hmaddocks/raytracing/tracing"
	"go.uber.org/zap"
)

// Config represents renderer service configuration
type Config struct {
	// WorkerCount is the number of workers rendering tiles
	WorkerCount int

	// TileSize is the edge length in pixels of the tiles a job is split into
	TileSize int

	// Retry controls how failed tiles are retried
	Retry RetryPolicy

	// Seed is the base seed for per-tile sampling; tiles derive their own
	// generators from it so renders are reproducible
	Seed int64
}

// RetryPolicy controls retry behaviour for failed tiles.
type RetryPolicy struct {
	// Type is one of "fixed" (default), "exponential" or "none"
	Type string

	// MaxRetries is the maximum number of retry attempts per tile
	MaxRetries int

	// Delay is the base delay between attempts
	Delay time.Duration

	// Multiplier scales the delay on each exponential attempt
	Multiplier float64

	// MaxDelay caps the exponential delay; zero means no cap
	MaxDelay time.Duration
}

// DefaultConfig returns the default renderer configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5,
		TileSize:    64,
		Retry: RetryPolicy{
			MaxRetries: 1,
			Delay:      3 * time.Second,
		},
	}
}

// Service renders scenes as tiled jobs processed by a worker pool. Tiles are
// dispatched through a message queue; each worker traces its tile with a
// deterministic per-tile random generator and writes pixels into the job's
// framebuffer.
type Service struct {
	config  Config
	jobDAO  dao.Service[string, render.Job]
	tileDAO dao.Service[string, render.Tile]

	queue  messaging.Queue[render.Tile]
	events *event.Service
	logger *zap.Logger

	runtimes map[string]*jobRuntime
	mux      sync.RWMutex

	// renderFn traces one tile; defaults to Service.renderTile. Tests swap it
	// to drive the failure path without a panicking material.
	renderFn func(ctx context.Context, rt *jobRuntime, tile *render.Tile) error

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

// jobRuntime is the in-process state of one running job: the compiled scene
// and the framebuffer. It never leaves the service.
type jobRuntime struct {
	job      *render.Job
	camera   *render.Camera
	world    shape.Hittable
	fb       *render.Framebuffer
	progress *progress.Progress
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// ---------------------------------------------------------------------------
// Retry helpers
// ---------------------------------------------------------------------------

// shouldRetry returns (retry?, delay)
func (s *Service) shouldRetry(attempts int) (bool, time.Duration) {
	cfg := s.config.Retry

	if strings.ToLower(cfg.Type) == "none" {
		return false, 0
	}
	if attempts >= cfg.MaxRetries {
		return false, 0
	}

	baseDelay := cfg.Delay
	if baseDelay == 0 {
		baseDelay = DefaultConfig().Retry.Delay
	}

	switch strings.ToLower(cfg.Type) {
	case "exponential":
		mult := cfg.Multiplier
		if mult <= 1 {
			mult = 2
		}
		delay := float64(baseDelay) * math.Pow(mult, float64(attempts))
		if cfg.MaxDelay > 0 && time.Duration(delay) > cfg.MaxDelay {
			delay = float64(cfg.MaxDelay)
		}
		return true, time.Duration(delay)
	default: // fixed
		return true, baseDelay
	}
}

// New creates a new renderer service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		runtimes:   map[string]*jobRuntime{},
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.jobDAO == nil {
		return nil, fmt.Errorf("jobDAO service is required")
	}
	if s.tileDAO == nil {
		return nil, fmt.Errorf("tileDAO service is required")
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.config.TileSize <= 0 {
		s.config.TileSize = DefaultConfig().TileSize
	}
	if s.renderFn == nil {
		s.renderFn = s.renderTile
	}
	return s, nil
}

// Start begins the tile rendering workers
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}

	return nil
}

// run processes tiles from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled; graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error, back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if msg == nil {
			continue
		}

		if pErr := w.service.processTile(w.ctx, msg); pErr != nil {
			w.service.logger.Warn("failed to process tile",
				zap.Int("worker", w.id),
				zap.Error(pErr))
		}
	}
}

// StartJob compiles the scene, splits the image into tiles and publishes them
// to the queue. It returns immediately; the job completes asynchronously.
func (s *Service) StartJob(ctx context.Context, scene *model.Scene) (job *render.Job, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("renderer.StartJob %s", scene.Name), "PRODUCER")
	defer tracing.EndSpan(span, err)
	span.WithAttributes(map[string]string{"scene.name": scene.Name})

	camera, world, err := render.CompileScene(scene)
	if err != nil {
		return nil, err
	}

	jobID := scene.Name + "/" + idgen.New()
	span.WithAttributes(map[string]string{"job.id": jobID})

	width, height := camera.Width(), camera.Height()
	job = render.NewJob(jobID, scene.Name, width, height, s.config.TileSize)
	tiles := render.Grid(jobID, width, height, s.config.TileSize)
	job.Tiles = len(tiles)

	_, tracker := progress.WithNewTracker(ctx, jobID, scene.Name, nil)
	rt := &jobRuntime{
		job:      job,
		camera:   camera,
		world:    world,
		fb:       render.NewFramebuffer(width, height),
		progress: tracker,
	}

	s.mux.Lock()
	s.runtimes[jobID] = rt
	s.mux.Unlock()

	ctx = context.WithValue(ctx, render.JobKey, job)
	job.Start()
	if err = s.jobDAO.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	tracker.Update(progress.Delta{Total: len(tiles), Pending: len(tiles)})

	for _, tile := range tiles {
		tile.State = render.TileStateScheduled
		if err = s.tileDAO.Save(ctx, tile); err != nil {
			return nil, fmt.Errorf("failed to save tile %s: %w", tile.ID, err)
		}
		if err = s.queue.Publish(ctx, tile); err != nil {
			return nil, fmt.Errorf("failed to publish tile %s: %w", tile.ID, err)
		}
	}

	s.publishJobEvent(ctx, job, event.TypeJobStarted)
	s.logger.Info("render job started",
		zap.String("job", jobID),
		zap.String("scene", scene.Name),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("tiles", len(tiles)))

	return job, nil
}

// Job retrieves a job by ID
func (s *Service) Job(ctx context.Context, jobID string) (*render.Job, error) {
	return s.jobDAO.Load(ctx, jobID)
}

// Jobs lists jobs, optionally filtered by state
func (s *Service) Jobs(ctx context.Context, parameters ...*dao.Parameter) ([]*render.Job, error) {
	return s.jobDAO.List(ctx, parameters...)
}

// CancelJob stops a running job. In-flight tiles finish; queued tiles are
// discarded when a worker picks them up. Jobs running in this process are
// cancelled through their live runtime so workers observe the state change;
// the DAO is only consulted for jobs this process never started, which
// matters for stores that hand out snapshots rather than live pointers.
func (s *Service) CancelJob(ctx context.Context, jobID string) error {
	var job *render.Job
	if rt := s.runtime(jobID); rt != nil {
		job = rt.job
	} else {
		var err error
		job, err = s.jobDAO.Load(ctx, jobID)
		if err != nil {
			return fmt.Errorf("failed to load job: %w", err)
		}
	}
	if job.GetState().IsTerminal() {
		return fmt.Errorf("job %s already finished", jobID)
	}
	job.Cancel()
	if err := s.jobDAO.Save(ctx, job); err != nil {
		return err
	}
	s.publishJobEvent(ctx, job, event.TypeJobCancelled)
	s.logger.Info("render job cancelled", zap.String("job", jobID))
	return nil
}

// Framebuffer returns the pixel buffer of a job known to this service.
func (s *Service) Framebuffer(jobID string) (*render.Framebuffer, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	rt, ok := s.runtimes[jobID]
	if !ok {
		return nil, false
	}
	return rt.fb, true
}

// Progress returns a snapshot of the job's tile counters.
func (s *Service) Progress(jobID string) (progress.Snapshot, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	rt, ok := s.runtimes[jobID]
	if !ok {
		return progress.Snapshot{}, false
	}
	return rt.progress.Snapshot(), true
}

func (s *Service) runtime(jobID string) *jobRuntime {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.runtimes[jobID]
}

// processTile handles a single tile message
func (s *Service) processTile(ctx context.Context, message messaging.Message[render.Tile]) error {
	queued := message.T()

	// The queue carries a copy; the DAO holds the canonical tile.
	tile, err := s.tileDAO.Load(ctx, queued.ID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			tile = queued
		} else {
			return message.Nack(err)
		}
	}

	rt := s.runtime(tile.JobID)
	if rt == nil {
		// Job is unknown to this process; drop the tile.
		return message.Ack()
	}
	if rt.job.GetState() != render.JobStateRunning {
		// Cancelled or failed meanwhile.
		return message.Ack()
	}

	// Honour scheduled back-off from a previous attempt.
	if tile.RunAfter != nil {
		if wait := time.Until(*tile.RunAfter); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return message.Nack(ctx.Err())
			}
		}
	}

	ctx = context.WithValue(ctx, render.JobKey, rt.job)
	ctx = context.WithValue(ctx, render.TileKey, tile)

	tile.Start()
	if err := s.tileDAO.Save(ctx, tile); err != nil {
		return message.Nack(err)
	}
	rt.progress.Update(progress.Delta{Running: 1, Pending: -1})

	started := time.Now()
	spanCtx, span := tracing.StartSpan(ctx, fmt.Sprintf("renderer.renderTile %s", tile.ID), "CONSUMER")
	span.WithAttributes(map[string]string{
		"job.id":       tile.JobID,
		"tile.id":      tile.ID,
		"tile.attempt": fmt.Sprintf("%d", tile.Attempts),
	})
	err = s.renderFn(spanCtx, rt, tile)
	tracing.EndSpan(span, err)

	if err != nil {
		rt.progress.Update(progress.Delta{Running: -1})
		shouldRetry, delay := s.shouldRetry(tile.Attempts)
		if shouldRetry {
			tile.Attempts++
			runAt := time.Now().Add(delay)
			tile.RunAfter = &runAt
			tile.State = render.TileStateScheduled
			if daoErr := s.tileDAO.Save(ctx, tile); daoErr != nil {
				return message.Nack(fmt.Errorf("error %w and failed to save tile: %v", err, daoErr))
			}
			rt.progress.Update(progress.Delta{Pending: 1})
			retry := *tile
			time.AfterFunc(delay, func() {
				if pubErr := s.queue.Publish(context.Background(), &retry); pubErr != nil {
					s.logger.Warn("failed to republish tile",
						zap.String("tile", tile.ID), zap.Error(pubErr))
				}
			})
			return message.Ack()
		}

		// Give up; the tile failure fails the whole job.
		tile.Fail(err)
		if daoErr := s.tileDAO.Save(ctx, tile); daoErr != nil {
			return message.Nack(fmt.Errorf("encounter error: %w, and failed to save tile: %v", err, daoErr))
		}
		rt.progress.Update(progress.Delta{Failed: 1})
		rt.job.Fail(tile.ID, err)
		if daoErr := s.jobDAO.Save(ctx, rt.job); daoErr != nil {
			s.logger.Warn("failed to save failed job", zap.Error(daoErr))
		}
		s.publishTileEvent(ctx, tile, event.TypeTileFailed, started)
		s.publishJobEvent(ctx, rt.job, event.TypeJobFailed)
		s.logger.Warn("tile failed",
			zap.String("tile", tile.ID),
			zap.Int("attempts", tile.Attempts),
			zap.Error(err))
		return message.Ack()
	}

	tile.Complete()
	if err := s.tileDAO.Save(ctx, tile); err != nil {
		return message.Nack(err)
	}
	rt.progress.Update(progress.Delta{
		Running:   -1,
		Completed: 1,
		Samples:   int64(tile.Pixels()) * int64(rt.camera.SamplesPerPixel()),
	})
	s.publishTileEvent(ctx, tile, event.TypeTileCompleted, started)

	if rt.job.TileCompleted() {
		if err := s.jobDAO.Save(ctx, rt.job); err != nil {
			s.logger.Warn("failed to save completed job", zap.Error(err))
		}
		s.publishJobEvent(ctx, rt.job, event.TypeJobCompleted)
		s.logger.Info("render job completed",
			zap.String("job", rt.job.ID),
			zap.Duration("elapsed", rt.job.Elapsed()))
	}

	return message.Ack()
}

// renderTile traces every pixel of the tile; a panicking material or shape is
// converted into an error so the retry machinery can deal with it.
func (s *Service) renderTile(_ context.Context, rt *jobRuntime, tile *render.Tile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	rng := rand.New(rand.NewSource(s.tileSeed(tile)))
	rt.camera.RenderTile(rng, rt.world, rt.fb, tile)
	return nil
}

// tileSeed derives a per-tile seed so renders are reproducible regardless of
// which worker picks the tile up, while retries resample with fresh noise.
func (s *Service) tileSeed(tile *render.Tile) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tile.ID))
	return s.config.Seed ^ int64(h.Sum64()) ^ int64(tile.Attempts)<<32
}

func (s *Service) publishJobEvent(ctx context.Context, job *render.Job, eventType string) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[render.Job](s.events)
	if err != nil {
		s.logger.Warn("failed to resolve job event publisher", zap.Error(err))
		return
	}
	evt := event.NewEvent(&event.Context{
		JobID:     job.ID,
		EventType: eventType,
		Scene:     job.SceneName,
	}, job.Snapshot())
	if err := publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish job event", zap.Error(err))
	}
}

func (s *Service) publishTileEvent(ctx context.Context, tile *render.Tile, eventType string, started time.Time) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[render.Tile](s.events)
	if err != nil {
		s.logger.Warn("failed to resolve tile event publisher", zap.Error(err))
		return
	}
	evt := event.NewEvent(&event.Context{
		JobID:       tile.JobID,
		TileID:      tile.ID,
		EventType:   eventType,
		TimeTakenMs: int(time.Since(started).Milliseconds()),
	}, *tile)
	if err := publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish tile event", zap.Error(err))
	}
}

// Shutdown stops the renderer workers
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
