package gologger

import (
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-mailhooks/core"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ResolveObserver resolves the logger for name and wraps it, together with
// metrics, in an observer that uses name as its metric namespace.
func ResolveObserver(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
	metrics core.MetricsRecorder,
) (glog.LoggerProvider, core.Observer) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, core.NewObserver(name, resolvedLogger, metrics)
}
