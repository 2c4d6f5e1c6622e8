package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStatusStampsStartOnce(t *testing.T) {
	s := &Section{Status: WorkNotStarted}
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	s.ApplyStatus(WorkInProgress, first)
	require.NotNil(t, s.StartedAt)
	assert.Equal(t, first, *s.StartedAt)

	// Re-entering in_progress must not move the original stamp.
	s.ApplyStatus(WorkCompleted, later)
	s.ApplyStatus(WorkInProgress, later.Add(time.Hour))
	assert.Equal(t, first, *s.StartedAt)
}

func TestApplyStatusRefreshesCompletion(t *testing.T) {
	s := &Section{Status: WorkInProgress}
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(72 * time.Hour)

	s.ApplyStatus(WorkCompleted, first)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, first, *s.CompletedAt)

	s.ApplyStatus(WorkInProgress, first.Add(time.Hour))
	assert.NotNil(t, s.CompletedAt, "backward transitions keep the audit trail")

	s.ApplyStatus(WorkCompleted, second)
	assert.Equal(t, second, *s.CompletedAt)
}

func TestApplyStatusDirectCompletion(t *testing.T) {
	// Completing without ever passing through in_progress leaves StartedAt
	// empty.
	s := &Section{Status: WorkNotStarted}
	s.ApplyStatus(WorkCompleted, time.Now())
	assert.Nil(t, s.StartedAt)
	assert.NotNil(t, s.CompletedAt)
	assert.Equal(t, WorkCompleted, s.Status)
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		completed int
		total     int
		want      int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 6, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{5, 6, 83},
		{6, 6, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgressOf(tt.completed, tt.total),
			"%d of %d", tt.completed, tt.total)
	}
}

func TestProgressCountsCompletedOnly(t *testing.T) {
	sections := []Section{
		{Status: WorkCompleted},
		{Status: WorkInProgress},
		{Status: WorkNotStarted},
	}
	assert.Equal(t, 33, Progress(sections))
	assert.Equal(t, 0, Progress(nil))
}
