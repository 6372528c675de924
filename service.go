package mailhooks

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-mailhooks/adapters/nethttp"
	"github.com/goliatone/go-mailhooks/core"
	"github.com/goliatone/go-mailhooks/inbound"
	"github.com/goliatone/go-mailhooks/providers/mailgun"
	"github.com/goliatone/go-mailhooks/signal"
)

// Service owns the webhook handlers of one configured deployment.
type Service struct {
	config     Config
	dispatcher *inbound.Dispatcher
	now        func() time.Time
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return Setup(context.Background(), cfg, opts...)
}

// Setup resolves configuration from defaults, the config provider and cfg
// (highest precedence), then builds and registers the Mailgun handlers.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	b := builder{runtimeConfig: cfg}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&b)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if b.configProvider == nil {
		b.configProvider = core.NewCfgxConfigProvider(nil)
	}
	if b.optionsResolver == nil {
		b.optionsResolver = core.GoOptionsResolver{}
	}
	if b.metrics == nil {
		b.metrics = core.NopMetricsRecorder{}
	}
	if b.trackingSink == nil {
		b.trackingSink = signal.NewTrackingSink()
	}
	if b.inboundSink == nil {
		b.inboundSink = signal.NewInboundSink()
	}
	if b.now == nil {
		b.now = time.Now
	}

	defaults := core.DefaultConfig()
	loaded, err := b.configProvider.Load(ctx, defaults)
	if err != nil {
		return nil, setupError(err, "mailhooks: load configuration")
	}
	resolved, err := b.optionsResolver.Resolve(defaults, loaded, b.runtimeConfig)
	if err != nil {
		return nil, setupError(err, "mailhooks: resolve configuration")
	}

	_, logger := glog.Resolve(resolved.ServiceName, b.loggerProvider, b.logger)
	logger = glog.Ensure(logger)
	observer := core.NewObserver(resolved.ServiceName, logger, b.metrics)

	mailgunConfig := mailgun.ConfigFromCore(resolved)
	tracking, err := mailgun.NewTrackingHandler(mailgunConfig, b.trackingSink)
	if err != nil {
		return nil, err
	}
	received, err := mailgun.NewInboundHandler(mailgunConfig, b.inboundSink)
	if err != nil {
		return nil, err
	}
	dispatcher := inbound.NewDispatcher(observer)
	for _, handler := range []inbound.Handler{tracking, received} {
		if err := dispatcher.Register(handler); err != nil {
			return nil, err
		}
	}

	observer.Debug(ctx, "mailhooks service configured", map[string]any{
		"service_name":       resolved.ServiceName,
		"providers":          []string{mailgun.ProviderID},
		"webhook_auth_users": len(resolved.Webhook.BasicAuth),
	})

	return &Service{
		config:     resolved,
		dispatcher: dispatcher,
		now:        b.now,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Tracking handles a delivery or engagement webhook. An empty provider id
// defaults to Mailgun.
func (s *Service) Tracking(ctx context.Context, req InboundRequest) (InboundResult, error) {
	req.Surface = core.SurfaceTracking
	return s.Dispatch(ctx, req)
}

// Inbound handles a received message webhook. An empty provider id defaults
// to Mailgun.
func (s *Service) Inbound(ctx context.Context, req InboundRequest) (InboundResult, error) {
	req.Surface = core.SurfaceInbound
	return s.Dispatch(ctx, req)
}

func (s *Service) Dispatch(ctx context.Context, req InboundRequest) (InboundResult, error) {
	if s == nil || s.dispatcher == nil {
		return InboundResult{}, core.Internal("mailhooks: service is not configured", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.ProviderID) == "" {
		req.ProviderID = mailgun.ProviderID
	}
	metadata := make(map[string]any, len(req.Metadata)+1)
	for key, value := range req.Metadata {
		metadata[key] = value
	}
	if _, ok := metadata["received_at"]; !ok {
		metadata["received_at"] = s.now().UTC()
	}
	req.Metadata = metadata
	return s.dispatcher.Dispatch(ctx, req)
}

// HTTPHandler serves POST {prefix}/{provider}/{surface}.
func (s *Service) HTTPHandler(prefix string) http.Handler {
	return nethttp.NewRouter(s, prefix, nethttp.Decoder{})
}

func setupError(err error, message string) error {
	if core.TextCode(err) != "" {
		return err
	}
	return core.WrapError(err, goerrors.CategoryValidation, message, http.StatusInternalServerError, core.ErrorConfigInvalid, nil)
}
