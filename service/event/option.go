package event

import (
	"github.com/hmaddocks/raytracing/service/messaging/fs"
	"github.com/hmaddocks/raytracing/service/messaging/memory"
)

type Option func(s *Service)

// WithNewFsQueueConfig sets the filesystem queue configuration factory
func WithNewFsQueueConfig(newConfig func(name string) fs.QueueConfig) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithNewMemoryQueueConfig sets the memory queue configuration factory
func WithNewMemoryQueueConfig(newQueue func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newQueue
	}
}
