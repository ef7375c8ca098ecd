package renderer

import (
	"github.com/hmaddocks/raytracing/runtime/render"
	"github.com/hmaddocks/raytracing/service/dao"
	"github.com/hmaddocks/raytracing/service/event"
	"github.com/hmaddocks/raytracing/service/messaging"
	"go.uber.org/zap"
)

type Option func(*Service)

// WithJobDAO sets the job store implementation
func WithJobDAO(jobDAO dao.Service[string, render.Job]) Option {
	return func(s *Service) {
		s.jobDAO = jobDAO
	}
}

// WithTileDAO sets the tile store implementation
func WithTileDAO(tileDAO dao.Service[string, render.Tile]) Option {
	return func(s *Service) {
		s.tileDAO = tileDAO
	}
}

// WithMessageQueue sets the message queue implementation
func WithMessageQueue(queue messaging.Queue[render.Tile]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithEventService sets the event service used to publish job and tile
// lifecycle events
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithTileSize sets the tile edge length in pixels
func WithTileSize(size int) Option {
	return func(s *Service) {
		s.config.TileSize = size
	}
}

// WithSeed sets the base sampling seed
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.config.Seed = seed
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
