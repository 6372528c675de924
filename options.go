package mailhooks

import (
	"time"

	"github.com/goliatone/go-mailhooks/core"
)

type Option func(*builder)

type builder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metrics         MetricsRecorder
	trackingSink    TrackingSink
	inboundSink     InboundSink
	configProvider  core.ConfigProvider
	optionsResolver core.OptionsResolver
	now             func() time.Time
}

func WithLogger(logger Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *builder) {
		if provider != nil {
			b.loggerProvider = provider
		}
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *builder) {
		if recorder != nil {
			b.metrics = recorder
		}
	}
}

// WithTrackingSink replaces the default go-command publisher for tracking
// events.
func WithTrackingSink(sink TrackingSink) Option {
	return func(b *builder) {
		if sink != nil {
			b.trackingSink = sink
		}
	}
}

// WithInboundSink replaces the default go-command publisher for received
// messages.
func WithInboundSink(sink InboundSink) Option {
	return func(b *builder) {
		if sink != nil {
			b.inboundSink = sink
		}
	}
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(b *builder) {
		if provider != nil {
			b.configProvider = provider
		}
	}
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(b *builder) {
		if resolver != nil {
			b.optionsResolver = resolver
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(b *builder) {
		if now != nil {
			b.now = now
		}
	}
}
