package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledCallTimesEvenlySpacesWithinHour(t *testing.T) {
	var table [24]int
	table[7] = 4
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	calls := scheduledCallTimes(table, from)
	require.Len(t, calls, 4)
	assert.Equal(t, time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC), calls[0])
	assert.Equal(t, time.Date(2026, 8, 1, 7, 15, 0, 0, time.UTC), calls[1])
	assert.Equal(t, time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC), calls[2])
	assert.Equal(t, time.Date(2026, 8, 1, 7, 45, 0, 0, time.UTC), calls[3])
}

func TestScheduledCallTimesSkipsZeroHours(t *testing.T) {
	var table [24]int
	table[3] = 0
	table[4] = 0
	table[5] = 0
	table[6] = 2
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	calls := scheduledCallTimes(table, from)
	require.Len(t, calls, 2)
	assert.Equal(t, 6, calls[0].Hour())
}

func TestNextMidnightAdvancesOneDay(t *testing.T) {
	from := time.Date(2026, 8, 1, 14, 30, 0, 0, time.UTC)
	next := nextMidnight(from)
	assert.Equal(t, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), next)
}
