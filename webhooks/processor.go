package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mailhooks/core"
)

type Parser[E any] interface {
	Parse(ctx context.Context, req core.InboundRequest) ([]E, error)
}

type ParserFunc[E any] func(ctx context.Context, req core.InboundRequest) ([]E, error)

func (f ParserFunc[E]) Parse(ctx context.Context, req core.InboundRequest) ([]E, error) {
	return f(ctx, req)
}

// Processor verifies one provider call, parses it into normalized events
// and emits each event to Sink in order.
type Processor[E any] struct {
	Verifier Verifier
	Parser   Parser[E]
	Sink     core.Sink[E]

	providerID string
	surface    string
}

func NewProcessor[E any](
	providerID string,
	surface string,
	verifier Verifier,
	parser Parser[E],
	sink core.Sink[E],
) *Processor[E] {
	return &Processor[E]{
		Verifier:   verifier,
		Parser:     parser,
		Sink:       sink,
		providerID: strings.TrimSpace(strings.ToLower(providerID)),
		surface:    strings.TrimSpace(strings.ToLower(surface)),
	}
}

func (p *Processor[E]) ProviderID() string {
	if p == nil {
		return ""
	}
	return p.providerID
}

func (p *Processor[E]) Surface() string {
	if p == nil {
		return ""
	}
	return p.surface
}

func (p *Processor[E]) Handle(ctx context.Context, req core.InboundRequest) (core.InboundResult, error) {
	if p == nil || p.Parser == nil || p.Sink == nil {
		return core.InboundResult{}, core.Internal("webhooks: processor requires parser and sink", nil)
	}
	fields := map[string]any{
		"provider_id": p.providerID,
		"surface":     p.surface,
	}

	if p.Verifier != nil {
		if err := p.Verifier.Verify(ctx, req); err != nil {
			if core.TextCode(err) == "" {
				err = core.WrapError(
					err,
					goerrors.CategoryAuth,
					"webhooks: request verification failed",
					http.StatusUnauthorized,
					core.ErrorValidationFailed,
					fields,
				)
			}
			return core.InboundResult{
				Accepted:   false,
				StatusCode: core.HTTPStatus(err),
				Metadata: map[string]any{
					"provider_id": p.providerID,
					"surface":     p.surface,
					"rejected":    true,
				},
			}, err
		}
	}

	events, err := p.Parser.Parse(ctx, req)
	if err != nil {
		if core.TextCode(err) == "" {
			err = core.WrapBadPayload(err, "webhooks: parse provider payload", fields)
		}
		return core.InboundResult{}, err
	}

	for index, event := range events {
		if err := p.Sink.Emit(ctx, event); err != nil {
			return core.InboundResult{}, core.WrapError(
				err,
				goerrors.CategoryOperation,
				fmt.Sprintf("webhooks: emit event %d of %d", index+1, len(events)),
				http.StatusInternalServerError,
				core.ErrorEmitFailed,
				fields,
			)
		}
	}

	return core.InboundResult{
		Accepted:   true,
		StatusCode: http.StatusOK,
		Metadata: map[string]any{
			"provider_id": p.providerID,
			"surface":     p.surface,
			"event_count": len(events),
		},
	}, nil
}
