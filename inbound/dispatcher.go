package inbound

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-mailhooks/core"
	"github.com/google/uuid"
)

const (
	SurfaceTracking = core.SurfaceTracking
	SurfaceInbound  = core.SurfaceInbound
)

type Handler interface {
	ProviderID() string
	Surface() string
	Handle(ctx context.Context, req core.InboundRequest) (core.InboundResult, error)
}

// Dispatcher routes a request to the handler registered for its provider
// and surface.
type Dispatcher struct {
	Observer core.Observer
	NewID    func() string

	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewDispatcher(observer core.Observer) *Dispatcher {
	return &Dispatcher{
		Observer: observer,
		NewID:    uuid.NewString,
		handlers: map[string]Handler{},
	}
}

func (d *Dispatcher) Register(handler Handler) error {
	if d == nil {
		return inboundInternal("inbound: dispatcher is nil", nil)
	}
	if handler == nil {
		return inboundBadInput("inbound: handler is nil", nil)
	}
	providerID := normalizeID(handler.ProviderID())
	surface := normalizeID(handler.Surface())
	if providerID == "" {
		return inboundBadInput("inbound: handler provider id is required", map[string]any{"surface": surface})
	}
	if !isSupportedSurface(surface) {
		return inboundBadInput(
			fmt.Sprintf("inbound: unsupported surface %q", surface),
			map[string]any{"provider_id": providerID, "surface": surface},
		)
	}
	key := handlerKey(providerID, surface)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = map[string]Handler{}
	}
	if _, exists := d.handlers[key]; exists {
		return inboundError(
			fmt.Sprintf("inbound: handler already registered for %s/%s", providerID, surface),
			goerrors.CategoryConflict,
			http.StatusConflict,
			core.ErrorHandlerConflict,
			map[string]any{"provider_id": providerID, "surface": surface},
		)
	}
	d.handlers[key] = handler
	return nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, req core.InboundRequest) (result core.InboundResult, err error) {
	if d == nil {
		return core.InboundResult{}, inboundInternal("inbound: dispatcher is nil", nil)
	}
	startedAt := time.Now()
	req.ProviderID = normalizeID(req.ProviderID)
	req.Surface = normalizeID(req.Surface)
	req.Metadata = ensureMetadata(req.Metadata)
	requestID := trimAny(req.Metadata["request_id"])
	if requestID == "" {
		requestID = d.newID()
		req.Metadata["request_id"] = requestID
	}
	defer func() {
		d.Observer.Observe(ctx, startedAt, "webhook_dispatch", err, map[string]any{
			"provider_id": req.ProviderID,
			"surface":     req.Surface,
			"request_id":  requestID,
			"status_code": result.StatusCode,
		})
	}()

	if req.ProviderID == "" {
		return core.InboundResult{}, inboundBadInput("inbound: provider id is required", map[string]any{
			"surface": req.Surface,
		})
	}
	if !isSupportedSurface(req.Surface) {
		return core.InboundResult{}, inboundBadInput(
			fmt.Sprintf("inbound: unsupported surface %q", req.Surface),
			map[string]any{"provider_id": req.ProviderID, "surface": req.Surface},
		)
	}

	handler := d.handlerFor(req.ProviderID, req.Surface)
	if handler == nil {
		return core.InboundResult{}, inboundError(
			fmt.Sprintf("inbound: no handler registered for %s/%s", req.ProviderID, req.Surface),
			goerrors.CategoryNotFound,
			http.StatusNotFound,
			core.ErrorHandlerNotFound,
			map[string]any{"provider_id": req.ProviderID, "surface": req.Surface},
		)
	}

	result, err = handler.Handle(ctx, req)
	if err != nil {
		if result.StatusCode == 0 {
			result.StatusCode = core.HTTPStatus(err)
		}
		return result, err
	}
	result.Metadata = ensureMetadata(result.Metadata)
	result.Metadata["provider_id"] = req.ProviderID
	result.Metadata["surface"] = req.Surface
	result.Metadata["request_id"] = requestID
	return result, nil
}

func (d *Dispatcher) handlerFor(providerID string, surface string) Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[handlerKey(providerID, surface)]
}

func (d *Dispatcher) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func handlerKey(providerID string, surface string) string {
	return providerID + ":" + surface
}

func normalizeID(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func isSupportedSurface(surface string) bool {
	switch surface {
	case SurfaceTracking, SurfaceInbound:
		return true
	default:
		return false
	}
}

func ensureMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}

func trimAny(value any) string {
	if value == nil {
		return ""
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "<nil>" {
		return ""
	}
	return text
}
