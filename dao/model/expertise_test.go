package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRemarkCannotCloseWithoutResponse(t *testing.T) {
	r := &ExpertiseRemark{Status: RemarkOpen}

	err := r.SetStatus(RemarkClosed)
	require.ErrorIs(t, err, ErrRemarkNotResponded)
	assert.Equal(t, RemarkOpen, r.Status)
}

func TestRemarkClosesAfterResponse(t *testing.T) {
	r := &ExpertiseRemark{Status: RemarkOpen}
	r.Respond(strPtr("исправлено"), nil, nil, 7, time.Now())
	assert.Equal(t, RemarkResponded, r.Status)

	require.NoError(t, r.SetStatus(RemarkClosed))
	assert.Equal(t, RemarkClosed, r.Status)
}

func TestRemarkSetStatusIdempotent(t *testing.T) {
	r := &ExpertiseRemark{Status: RemarkOpen}
	require.NoError(t, r.SetStatus(RemarkOpen))
	assert.Equal(t, RemarkOpen, r.Status)

	now := time.Now()
	r.Respond(strPtr("ответ"), nil, nil, 1, now)
	require.NoError(t, r.SetStatus(RemarkClosed))
	require.NoError(t, r.SetStatus(RemarkClosed))
	assert.Equal(t, RemarkClosed, r.Status)
}

func TestClosedRemarkCannotReopen(t *testing.T) {
	r := &ExpertiseRemark{Status: RemarkOpen}
	r.Respond(strPtr("ответ"), nil, nil, 1, time.Now())
	require.NoError(t, r.SetStatus(RemarkClosed))

	assert.ErrorIs(t, r.SetStatus(RemarkOpen), ErrRemarkClosed)
	assert.ErrorIs(t, r.SetStatus(RemarkResponded), ErrRemarkClosed)
	assert.Equal(t, RemarkClosed, r.Status)
}

func TestRespondOverwritesPrevious(t *testing.T) {
	r := &ExpertiseRemark{Status: RemarkOpen}
	first := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	r.Respond(strPtr("первый ответ"), strPtr("/uploads/a.pdf"), strPtr("a.pdf"), 3, first)
	r.Respond(strPtr("второй ответ"), nil, nil, 5, second)

	assert.Equal(t, "второй ответ", *r.ResponseContent)
	// A text-only follow-up keeps the previously attached file.
	assert.Equal(t, "/uploads/a.pdf", *r.ResponseFile)
	assert.Equal(t, uint(5), *r.RespondedBy)
	assert.Equal(t, second, *r.RespondedAt)
}

func TestRespondDoesNotReopenClosed(t *testing.T) {
	r := &ExpertiseRemark{Status: RemarkOpen}
	r.Respond(strPtr("ответ"), nil, nil, 1, time.Now())
	require.NoError(t, r.SetStatus(RemarkClosed))

	r.Respond(strPtr("уточнение"), nil, nil, 1, time.Now())
	assert.Equal(t, RemarkClosed, r.Status)
}
