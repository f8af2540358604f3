package health

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("ReportAndSnapshot", func(t *testing.T) {
		r := NewRegistry()
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		r.now = func() time.Time { return at }

		r.Report(domain.SourceLocal, nil)
		r.Report(domain.SourceExternalA, errors.New("timeout"))

		snap := r.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, domain.HealthStatus{OK: true, CheckedAt: at}, snap[domain.SourceLocal])
		assert.Equal(t, domain.HealthStatus{Err: "timeout", CheckedAt: at}, snap[domain.SourceExternalA])
	})

	t.Run("LatestWins", func(t *testing.T) {
		r := NewRegistry()
		r.Report(domain.SourcePartner, errors.New("down"))
		r.Report(domain.SourcePartner, nil)

		assert.True(t, r.Snapshot()[domain.SourcePartner].OK)
	})

	t.Run("SnapshotIsCopy", func(t *testing.T) {
		r := NewRegistry()
		r.Report(domain.SourceLocal, nil)

		snap := r.Snapshot()
		delete(snap, domain.SourceLocal)
		assert.Len(t, r.Snapshot(), 1)
	})

	t.Run("Concurrent", func(t *testing.T) {
		r := NewRegistry()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tag := domain.Sources[i%len(domain.Sources)]
				r.Report(tag, nil)
				_ = r.Snapshot()
			}()
		}
		wg.Wait()
		assert.Len(t, r.Snapshot(), len(domain.Sources))
	})
}
