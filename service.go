package raytracing

import (
	"github.com/hmaddocks/raytracing/runtime/render"
	jmemory "github.com/hmaddocks/raytracing/service/dao/job/memory"
	tmemory "github.com/hmaddocks/raytracing/service/dao/tile/memory"
	"github.com/hmaddocks/raytracing/service/event"
	"github.com/hmaddocks/raytracing/service/image"
	"github.com/hmaddocks/raytracing/service/messaging"
	mmemory "github.com/hmaddocks/raytracing/service/messaging/memory"
	"github.com/hmaddocks/raytracing/service/renderer"
	"github.com/hmaddocks/raytracing/service/scene"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"go.uber.org/zap"
)

// Service is the high-level facade wiring the scene loader, the tile
// renderer and the image encoder together. All collaborators default to
// in-memory implementations and can be replaced through options.
type Service struct {
	runtime         *Runtime
	sceneService    *scene.Service
	imageService    *image.Service
	eventService    *event.Service
	queue           messaging.Queue[render.Tile]
	sceneBaseURL    string
	sceneFsOptions  []storage.Option
	config          *Config
	logger          *zap.Logger
	rendererOptions []renderer.Option
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.ensureBaseSetup()

	rendererOptions := append([]renderer.Option{
		renderer.WithJobDAO(s.runtime.jobDAO),
		renderer.WithTileDAO(s.runtime.tileDAO),
		renderer.WithMessageQueue(s.queue),
		renderer.WithEventService(s.eventService),
		renderer.WithWorkers(s.config.Renderer.WorkerCount),
		renderer.WithTileSize(s.config.Renderer.TileSize),
		renderer.WithSeed(s.config.Renderer.Seed),
		renderer.WithLogger(s.logger),
	}, s.rendererOptions...)

	rendererService, err := renderer.New(rendererOptions...)
	if err != nil {
		return err
	}
	s.runtime.renderer = rendererService
	s.runtime.queue = s.queue
	s.runtime.sceneService = s.sceneService
	s.runtime.imageService = s.imageService
	s.runtime.logger = s.logger
	return nil
}

func (s *Service) ensureBaseSetup() {
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.sceneService == nil {
		s.sceneService = scene.New(afs.New(), s.sceneBaseURL, s.sceneFsOptions...)
	}
	if s.imageService == nil {
		s.imageService = image.New(afs.New())
	}
	if s.queue == nil {
		s.queue = mmemory.NewQueue[render.Tile](mmemory.DefaultConfig())
	}
	if s.runtime.jobDAO == nil {
		s.runtime.jobDAO = jmemory.New()
	}
	if s.runtime.tileDAO == nil {
		s.runtime.tileDAO = tmemory.New()
	}
	if s.eventService == nil {
		s.eventService, _ = event.New(event.VendorMemory)
	}
}

// Runtime returns the runtime handle used to load scenes and run renders.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a render engine service facade.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}, config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
