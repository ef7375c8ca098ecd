package raytracing

import (
	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/event"
	"github.com/hmaddocks/raytracing/service/messaging"
	"github.com/hmaddocks/raytracing/service/renderer"
	"github.com/hmaddocks/raytracing/service/scene"
	"github.com/hmaddocks/raytracing/tracing"
	"github.com/viant/afs/storage"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service facade.
type Option func(s *Service)

// WithEventService sets the event service used for job and tile lifecycle
// notifications
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithSceneService sets the scene loading service
func WithSceneService(service *scene.Service) Option {
	return func(s *Service) {
		s.sceneService = service
	}
}

// WithQueue sets the tile message queue
func WithQueue(queue messaging.Queue[render.Tile]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithJobDAO sets the job store
func WithJobDAO(dao dao.Service[string, render.Job]) Option {
	return func(s *Service) {
		s.runtime.jobDAO = dao
	}
}

// WithTileDAO sets the tile store
func WithTileDAO(dao dao.Service[string, render.Tile]) Option {
	return func(s *Service) {
		s.runtime.tileDAO = dao
	}
}

// WithWorkers sets the number of render workers
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.Renderer.WorkerCount = count
	}
}

// WithTileSize sets the tile edge length in pixels
func WithTileSize(size int) Option {
	return func(s *Service) {
		s.config.Renderer.TileSize = size
	}
}

// WithSeed sets the base sampling seed so renders are reproducible
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.config.Renderer.Seed = seed
	}
}

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the structured logger shared by all sub-services
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSceneBaseURL sets the base URL scene locations are resolved against
func WithSceneBaseURL(url string) Option {
	return func(s *Service) {
		s.sceneBaseURL = url
	}
}

// WithSceneFsOptions sets scene file system options
func WithSceneFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.sceneFsOptions = options
	}
}

// WithRendererOptions lets the caller supply additional options passed to
// renderer.New (e.g. a custom retry policy).
func WithRendererOptions(opts ...renderer.Option) Option {
	return func(s *Service) {
		s.rendererOptions = append(s.rendererOptions, opts...)
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times; the first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, enabling integrations other than the built-in stdout exporter
// (OTLP, Jaeger, Zipkin). Safe to call multiple times; the first successful
// initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
