package core

import (
	"context"
	"net/url"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	SurfaceTracking = "tracking"
	SurfaceInbound  = "inbound"
)

type UploadedFile struct {
	Filename    string
	ContentType string
	Charset     string
	Content     []byte
}

// InboundRequest is one webhook call as delivered by the host framework.
// Form field names are case-sensitive and multi-valued.
type InboundRequest struct {
	ProviderID string
	Surface    string
	Headers    map[string]string
	Form       url.Values
	Files      map[string][]UploadedFile
	Body       []byte
	Metadata   map[string]any
}

// Header returns the request header value for key using a case-insensitive match.
func (r InboundRequest) Header(key string) string {
	if len(r.Headers) == 0 {
		return ""
	}
	for existing, value := range r.Headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// File returns the first file uploaded under field.
func (r InboundRequest) File(field string) (UploadedFile, bool) {
	files := r.Files[field]
	if len(files) == 0 {
		return UploadedFile{}, false
	}
	return files[0], true
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Metadata   map[string]any
}

type Sink[E any] interface {
	Emit(ctx context.Context, event E) error
}

type SinkFunc[E any] func(ctx context.Context, event E) error

func (f SinkFunc[E]) Emit(ctx context.Context, event E) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type TrackingSink = Sink[TrackingEvent]

type InboundSink = Sink[InboundEvent]

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
