package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/docdex"
)

// Ensure LoggingRegistry implements docdex.ReducerRegistry.
var _ docdex.ReducerRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a ReducerRegistry with logging for page kind
// detection. A page that routes to the fallback reducer is often the first
// symptom of a selector miss, so the detected kind is worth a log line.
type LoggingRegistry struct {
	next     docdex.ReducerRegistry
	detector docdex.PageKindDetector
	logger   *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next docdex.ReducerRegistry, detector docdex.PageKindDetector, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, detector: detector, logger: logger}
}

// Get delegates to the wrapped registry.
func (r *LoggingRegistry) Get(kind docdex.PageKind) docdex.SectionReducer {
	return r.next.Get(kind)
}

// GetForHTML detects the page kind, logs it, and returns the appropriate reducer.
func (r *LoggingRegistry) GetForHTML(html string) docdex.SectionReducer {
	begin := time.Now()
	kind := r.detector.Detect(html)
	kindName := string(kind)
	if kind == docdex.PageKindUnknown {
		kindName = "(unknown)"
	}
	r.logger.Info("page kind detection",
		"kind", kindName,
		"duration", time.Since(begin),
	)
	return r.next.GetForHTML(html)
}

// Register delegates to the wrapped registry.
func (r *LoggingRegistry) Register(kind docdex.PageKind, reducer docdex.SectionReducer) {
	r.next.Register(kind, reducer)
}

// List delegates to the wrapped registry.
func (r *LoggingRegistry) List() []docdex.PageKind {
	return r.next.List()
}
