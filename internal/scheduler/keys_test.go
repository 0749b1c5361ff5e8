package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cmms/internal/maintenance"
)

func TestCompositeKeys(t *testing.T) {
	assert.Equal(t, "notif-abc", notifKey("abc"))
	assert.Equal(t, "maint-42", maintKey(42))
	assert.Equal(t, "42-before-days-5", beforeKey(42, "days", 5))
	assert.True(t, isNotifKey("notif-abc"))
	assert.False(t, isNotifKey("maint-42"))
}

func TestHash31(t *testing.T) {
	seen := map[int32]struct{}{}
	for _, key := range []string{"notif-a", "notif-b", "maint-1", "1-before-days-5", ""} {
		h := Hash31(key)
		assert.GreaterOrEqual(t, h, int32(0), "handle must be a positive 31-bit int")
		assert.Equal(t, h, Hash31(key), "handle must be stable")
		seen[h] = struct{}{}
	}
	assert.Len(t, seen, 5)
}

func TestThresholdDays(t *testing.T) {
	cases := []struct {
		value int
		unit  string
		want  int
	}{
		{24, maintenance.UnitHours, 1},
		{36, maintenance.UnitHours, 2}, // hours round up to whole days
		{1, maintenance.UnitHours, 1},
		{5, maintenance.UnitDays, 5},
		{2, maintenance.UnitWeeks, 14},
		{0, maintenance.UnitDays, 0},
		{3, "fortnights", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, thresholdDays(c.value, c.unit), "%d %s", c.value, c.unit)
	}
}

func TestDaysDiff(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)

	assert.Equal(t, 0, daysDiff(now, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, daysDiff(now, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, daysDiff(now, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -2, daysDiff(now, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))

	// time-of-day on either side must not shift the whole-day distance
	late := time.Date(2026, 3, 13, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 3, daysDiff(now, late))
}
