package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-mailhooks/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets covers webhook handling latencies in milliseconds.
var DefaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// Recorder implements core.MetricsRecorder on Prometheus vectors. Dotted
// metric names become underscored Prometheus names; tags become labels.
// The label set of a metric is fixed by its first observation: later tags
// outside that set are dropped and missing ones are recorded empty.
type Recorder struct {
	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

type Option func(*Recorder)

func WithBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = append([]float64(nil), buckets...)
		}
	}
}

func NewRecorder(registerer prometheus.Registerer, opts ...Option) *Recorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	recorder := &Recorder{
		registerer: registerer,
		buckets:    DefaultBuckets,
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
		labels:     map[string][]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(recorder)
		}
	}
	return recorder
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	metric := MetricName(name)
	r.mu.Lock()
	vec, labels := r.counterVec(metric, tags)
	r.mu.Unlock()
	if vec == nil {
		return
	}
	counter, err := vec.GetMetricWith(labelValues(labels, tags))
	if err != nil {
		return
	}
	counter.Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	metric := MetricName(name)
	r.mu.Lock()
	vec, labels := r.histogramVec(metric, tags)
	r.mu.Unlock()
	if vec == nil {
		return
	}
	observer, err := vec.GetMetricWith(labelValues(labels, tags))
	if err != nil {
		return
	}
	observer.Observe(value)
}

func (r *Recorder) counterVec(metric string, tags map[string]string) (*prometheus.CounterVec, []string) {
	if vec, ok := r.counters[metric]; ok {
		return vec, r.labels[metric]
	}
	labels := labelNames(tags)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metric,
		Help: "Webhook counter " + metric + ".",
	}, labels)
	if err := r.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, nil
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, nil
		}
		vec = existing
	}
	r.counters[metric] = vec
	r.labels[metric] = labels
	return vec, labels
}

func (r *Recorder) histogramVec(metric string, tags map[string]string) (*prometheus.HistogramVec, []string) {
	if vec, ok := r.histograms[metric]; ok {
		return vec, r.labels[metric]
	}
	labels := labelNames(tags)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metric,
		Help:    "Webhook histogram " + metric + ".",
		Buckets: r.buckets,
	}, labels)
	if err := r.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, nil
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, nil
		}
		vec = existing
	}
	r.histograms[metric] = vec
	r.labels[metric] = labels
	return vec, labels
}

// Handler serves the metrics gathered by gatherer in the Prometheus
// exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// MetricName converts a dotted metric name into a valid Prometheus name.
func MetricName(name string) string {
	name = sanitize(strings.TrimSpace(name))
	if name == "" {
		return "mailhooks_unnamed"
	}
	return name
}

func sanitize(value string) string {
	var b strings.Builder
	for i, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func labelNames(tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for key := range tags {
		name := sanitize(strings.TrimSpace(key))
		if name == "" || strings.HasPrefix(name, "__") || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func labelValues(labels []string, tags map[string]string) prometheus.Labels {
	byName := make(map[string]string, len(tags))
	for key, value := range tags {
		byName[sanitize(strings.TrimSpace(key))] = value
	}
	values := make(prometheus.Labels, len(labels))
	for _, label := range labels {
		values[label] = byName[label]
	}
	return values
}

var _ core.MetricsRecorder = (*Recorder)(nil)
