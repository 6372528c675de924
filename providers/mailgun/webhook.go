package mailgun

import (
	"github.com/goliatone/go-mailhooks/core"
	"github.com/goliatone/go-mailhooks/webhooks"
)

// NewTrackingHandler builds the handler for Mailgun delivery and engagement
// webhooks.
func NewTrackingHandler(cfg Config, sink core.TrackingSink) (*webhooks.Processor[core.TrackingEvent], error) {
	if err := validateHandler(cfg, sink != nil); err != nil {
		return nil, err
	}
	return webhooks.NewProcessor[core.TrackingEvent](
		ProviderID,
		core.SurfaceTracking,
		NewVerifier(cfg),
		TrackingMapper{},
		sink,
	), nil
}

// NewInboundHandler builds the handler for Mailgun inbound routes.
func NewInboundHandler(cfg Config, sink core.InboundSink) (*webhooks.Processor[core.InboundEvent], error) {
	if err := validateHandler(cfg, sink != nil); err != nil {
		return nil, err
	}
	return webhooks.NewProcessor[core.InboundEvent](
		ProviderID,
		core.SurfaceInbound,
		NewVerifier(cfg),
		InboundMapper{},
		sink,
	), nil
}

func validateHandler(cfg Config, hasSink bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !hasSink {
		return core.ConfigInvalid("providers/mailgun: sink is required", map[string]any{
			"provider_id": ProviderID,
		})
	}
	return nil
}
