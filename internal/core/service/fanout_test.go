package service

import (
	"errors"
	"testing"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestQuotaAllocation(t *testing.T) {
	for limit := range 41 {
		primary := primaryQuota(limit)
		a, b := externalQuota(limit - 2*primary)

		assert.Equal(t, limit, 2*primary+a+b, "limit %d", limit)
		assert.GreaterOrEqual(t, a, b, "limit %d", limit)
		assert.LessOrEqual(t, a-b, 1, "limit %d", limit)
	}

	a, b := externalQuota(-3)
	assert.Zero(t, a)
	assert.Zero(t, b)
}

func TestRouteProductID(t *testing.T) {
	tests := []struct {
		id      string
		source  domain.SourceTag
		wantTag domain.SourceTag
		wantID  string
		wantErr error
	}{
		{"local_p1", "", domain.SourceLocal, "p1", nil},
		{"externalA_12", "", domain.SourceExternalA, "12", nil},
		{"p1", "", domain.SourceLocal, "p1", nil},
		{"partner_", "", domain.SourceLocal, "partner_", nil},
		{"partner_9", domain.SourcePartner, domain.SourcePartner, "9", nil},
		{"9", domain.SourceExternalB, domain.SourceExternalB, "9", nil},
		{"local_9", domain.SourceExternalB, domain.SourceExternalB, "local_9", nil},
		{"9", "amazon", "", "", domain.ErrUnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+string(tt.source), func(t *testing.T) {
			tag, id, err := routeProductID(tt.id, tt.source)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestStatuses(t *testing.T) {
	outcomes := []outcome{
		{source: domain.SourceLocal, called: true, products: make([]domain.Product, 2)},
		{source: domain.SourcePartner},
		{source: domain.SourceExternalA, called: true, err: errors.New("timeout")},
	}

	got := statuses(outcomes)
	assert.Equal(t, []domain.SourceStatus{
		{Source: domain.SourceLocal, OK: true, Count: 2},
		{Source: domain.SourceExternalA, Err: "timeout"},
	}, got)
}
