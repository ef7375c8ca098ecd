package raytracing

import "fmt"

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON, YAML, environment variables, etc. The zero-value is
// useful; all nested fields inherit their package defaults.

type Config struct {
	Renderer RendererConfig `json:"renderer" yaml:"renderer"`
}

type RendererConfig struct {
	WorkerCount int   `json:"workers" yaml:"workers"`
	TileSize    int   `json:"tileSize" yaml:"tileSize"`
	Seed        int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns a Config populated with the same default values used
// by the service constructors. Callers may modify the returned struct before
// passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Renderer: RendererConfig{
			WorkerCount: 5,
			TileSize:    64,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Renderer.WorkerCount <= 0 {
		return fmt.Errorf("renderer.workers must be > 0")
	}
	if c.Renderer.TileSize <= 0 {
		return fmt.Errorf("renderer.tileSize must be > 0")
	}
	return nil
}
