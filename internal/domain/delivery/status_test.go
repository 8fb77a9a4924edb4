package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusProcessing))
	assert.True(t, StatusProcessing.CanTransitionTo(StatusDelivered))
	assert.True(t, StatusFailed.CanTransitionTo(StatusPending))
	assert.True(t, StatusInTransit.CanTransitionTo(StatusCancelled))

	assert.False(t, StatusPending.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))
	assert.False(t, StatusFailed.CanTransitionTo(StatusDelivered))
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusInTransit, StatusFailed} {
		assert.False(t, s.Terminal(), s)
	}
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("in_transit")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, s)

	_, err = ParseStatus("lost")
	assert.Error(t, err)
}

func TestDeliveryTransitionTo(t *testing.T) {
	now := time.Date(2024, 3, 14, 17, 45, 0, 0, time.UTC)
	d := New(id.New(), now, StatusProcessing, "123 Main St", AutoCreatedNote, now)

	require.NoError(t, d.TransitionTo(StatusDelivered, now))
	require.NotNil(t, d.DeliveredAt)
	assert.Equal(t, now, *d.DeliveredAt)

	err := d.TransitionTo(StatusFailed, now)
	assert.True(t, apperror.IsConflict(err))
}

func TestMarkFailedIsIdempotent(t *testing.T) {
	now := time.Now()
	d := New(id.New(), now, StatusPending, "", "", now)
	require.NoError(t, d.MarkFailed(now))
	require.NoError(t, d.MarkFailed(now))
	assert.Equal(t, StatusFailed, d.Status)
}

func TestAppendNote(t *testing.T) {
	d := &Delivery{}
	d.AppendNote("  ")
	assert.Empty(t, d.Notes)
	d.AppendNote("first")
	d.AppendNote("second")
	assert.Equal(t, "first\nsecond", d.Notes)
}
