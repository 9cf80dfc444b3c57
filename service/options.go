package service

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/tiledec/codec"
	"github.com/arloliu/tiledec/internal/options"
	"github.com/arloliu/tiledec/internal/pool"
)

// DefaultMaxBandPixels bounds a single band at 64 Mpix (256 MB of float32).
const DefaultMaxBandPixels = 1 << 26

// Config holds the service settings assembled from options.
type Config struct {
	logger            log.Logger
	registerer        prometheus.Registerer
	binding           codec.Binding
	initialBufferSize int
	maxBandPixels     int
	debug             bool
}

// Option configures a Service.
type Option = options.Option[*Config]

func defaultConfig() *Config {
	return &Config{
		logger:            log.NewNopLogger(),
		binding:           codec.NewFPQ(),
		initialBufferSize: pool.WorkerBufferDefaultSize,
		maxBandPixels:     DefaultMaxBandPixels,
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithRegisterer registers the service metrics on reg. Without it metrics go
// to a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return options.NoError(func(c *Config) {
		c.registerer = reg
	})
}

// WithCodec replaces the codec binding used by every worker.
func WithCodec(binding codec.Binding) Option {
	return options.New(func(c *Config) error {
		if binding == nil {
			return fmt.Errorf("codec binding cannot be nil")
		}
		c.binding = binding

		return nil
	})
}

// WithInitialBufferSize sets the starting capacity, in bytes, of each worker's
// input buffer (and in float32 values of its output buffer). Defaults to 1 MB.
func WithInitialBufferSize(size int) Option {
	return options.New(func(c *Config) error {
		if size < 0 {
			return fmt.Errorf("initial buffer size cannot be negative: %d", size)
		}
		c.initialBufferSize = size

		return nil
	})
}

// WithMaxBandPixels rejects requests with a band larger than n pixels.
func WithMaxBandPixels(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("max band pixels must be positive: %d", n)
		}
		c.maxBandPixels = n

		return nil
	})
}

// WithDebug enables per-band throughput logging at debug level.
func WithDebug(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.debug = enabled
	})
}
