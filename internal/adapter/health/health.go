// Package health keeps the last observed outcome of every source call.
package health

import (
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var (
	_ port.SourceHealth       = (*Registry)(nil)
	_ port.SourceHealthReader = (*Registry)(nil)
)

type Registry struct {
	mu       sync.RWMutex
	statuses map[domain.SourceTag]domain.HealthStatus
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		statuses: make(map[domain.SourceTag]domain.HealthStatus),
		now:      time.Now,
	}
}

func (r *Registry) Report(source domain.SourceTag, err error) {
	st := domain.HealthStatus{OK: err == nil, CheckedAt: r.now().UTC()}
	if err != nil {
		st.Err = err.Error()
	}

	r.mu.Lock()
	prev, seen := r.statuses[source]
	r.statuses[source] = st
	r.mu.Unlock()

	if seen && prev.OK != st.OK {
		slog.Info("source health changed",
			"op", "Registry.Report", "source", source, "ok", st.OK,
		)
	}
}

// Snapshot returns a copy of the known statuses.
func (r *Registry) Snapshot() map[domain.SourceTag]domain.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.SourceTag]domain.HealthStatus, len(r.statuses))
	for tag, st := range r.statuses {
		out[tag] = st
	}
	return out
}
