package services

import (
	"testing"

	"social-tracker-api/models"

	"github.com/stretchr/testify/assert"
)

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{
			name:     "empty set stays pending",
			statuses: nil,
			want:     models.ScrapeStatusPending,
		},
		{
			name:     "processing dominates everything",
			statuses: []string{models.ScrapeStatusCompleted, models.ScrapeStatusFailed, models.ScrapeStatusProcessing},
			want:     models.ScrapeStatusProcessing,
		},
		{
			name:     "pending dominates terminal states",
			statuses: []string{models.ScrapeStatusCompleted, models.ScrapeStatusPending},
			want:     models.ScrapeStatusPending,
		},
		{
			name:     "all completed",
			statuses: []string{models.ScrapeStatusCompleted, models.ScrapeStatusCompleted},
			want:     models.ScrapeStatusCompleted,
		},
		{
			name:     "all failed",
			statuses: []string{models.ScrapeStatusFailed, models.ScrapeStatusFailed},
			want:     models.ScrapeStatusFailed,
		},
		{
			name:     "all cancelled",
			statuses: []string{models.ScrapeStatusCancelled, models.ScrapeStatusCancelled},
			want:     models.ScrapeStatusCancelled,
		},
		{
			name:     "mixed terminal counts as partial success",
			statuses: []string{models.ScrapeStatusCompleted, models.ScrapeStatusCompleted, models.ScrapeStatusFailed},
			want:     models.ScrapeStatusCompleted,
		},
		{
			name:     "mixed failed and cancelled still partial success when any completed",
			statuses: []string{models.ScrapeStatusCompleted, models.ScrapeStatusFailed, models.ScrapeStatusCancelled},
			want:     models.ScrapeStatusCompleted,
		},
		{
			name:     "failed and cancelled without completed",
			statuses: []string{models.ScrapeStatusFailed, models.ScrapeStatusCancelled},
			want:     models.ScrapeStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateStatus(tt.statuses))
		})
	}
}

func TestAggregateStatusOrderIndependent(t *testing.T) {
	forward := []string{
		models.ScrapeStatusCompleted,
		models.ScrapeStatusFailed,
		models.ScrapeStatusProcessing,
		models.ScrapeStatusPending,
	}
	reversed := []string{
		models.ScrapeStatusPending,
		models.ScrapeStatusProcessing,
		models.ScrapeStatusFailed,
		models.ScrapeStatusCompleted,
	}

	assert.Equal(t, AggregateStatus(forward), AggregateStatus(reversed))
	// Same inputs twice give the same answer.
	assert.Equal(t, AggregateStatus(forward), AggregateStatus(forward))
}
