package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCutoffBoundary(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	day := func(h, m, s, ns int) time.Time { return time.Date(2024, 3, 14, h, m, s, ns, loc) }

	tests := []struct {
		name       string
		placedAt   time.Time
		wantAt     time.Time
		wantStatus Status
	}{
		{name: "morning", placedAt: day(10, 0, 0, 0), wantAt: day(18, 0, 0, 0), wantStatus: StatusProcessing},
		{name: "exactly cutoff", placedAt: day(15, 0, 0, 0), wantAt: day(18, 0, 0, 0), wantStatus: StatusProcessing},
		{name: "one second late", placedAt: day(15, 0, 1, 0), wantAt: time.Date(2024, 3, 15, 9, 0, 0, 0, loc), wantStatus: StatusPending},
		{name: "sub-second late", placedAt: day(15, 0, 0, 1), wantAt: time.Date(2024, 3, 15, 9, 0, 0, 0, loc), wantStatus: StatusPending},
		{name: "midnight", placedAt: day(0, 0, 0, 0), wantAt: day(18, 0, 0, 0), wantStatus: StatusProcessing},
		{name: "late evening", placedAt: day(23, 59, 59, 0), wantAt: time.Date(2024, 3, 15, 9, 0, 0, 0, loc), wantStatus: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, status := Schedule(tt.placedAt)
			assert.True(t, tt.wantAt.Equal(at), "want %s got %s", tt.wantAt, at)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, loc, at.Location())
		})
	}
}

func TestScheduleRollsOverMonthAndYear(t *testing.T) {
	at, status := Schedule(time.Date(2024, 12, 31, 16, 30, 0, 0, time.UTC))
	assert.Equal(t, StatusPending, status)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), at)
}

func TestScheduleUsesPlacementLocation(t *testing.T) {
	// 15:30 in UTC+2 is 13:30 UTC: the same instant is late in one zone and on time in the other.
	zone := time.FixedZone("UTC+2", 2*60*60)
	instant := time.Date(2024, 6, 1, 15, 30, 0, 0, zone)

	_, status := Schedule(instant)
	assert.Equal(t, StatusPending, status)

	at, status := Schedule(instant.In(time.UTC))
	assert.Equal(t, StatusProcessing, status)
	assert.Equal(t, time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), at)
}

func TestCustomPolicy(t *testing.T) {
	p := Policy{CutoffHour: 12, SameDayHour: 16, NextDayHour: 8}
	at, status := p.Schedule(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, StatusProcessing, status)
	assert.Equal(t, 16, at.Hour())
}
