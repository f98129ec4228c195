package bootstrap

import (
	"github.com/quickutil/pdfpress/common/config"
	"github.com/quickutil/pdfpress/common/logger"
)

// Option configures the bootstrap process
type Option func(*options)

type options struct {
	skipRedis    bool
	skipMetrics  bool
	customLogger *logger.Logger
	customConfig *config.Config
}

// WithoutRedis skips Redis initialization even when rate limiting is enabled
func WithoutRedis() Option {
	return func(o *options) {
		o.skipRedis = true
	}
}

// WithoutMetrics forces the no-op metrics implementation
func WithoutMetrics() Option {
	return func(o *options) {
		o.skipMetrics = true
	}
}

// WithCustomLogger uses a custom logger instead of creating one
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithCustomConfig uses a custom config instead of loading from env
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

func defaultOptions() *options {
	return &options{
		skipRedis:   false,
		skipMetrics: false,
	}
}
