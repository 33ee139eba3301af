package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowIDDaily(t *testing.T) {
	at := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2024-03-01", windowID(WindowDaily, at))

	// two seconds later is a different window
	assert.Equal(t, "2024-03-02", windowID(WindowDaily, at.Add(2*time.Second)))
}

func TestWindowIDWeekly(t *testing.T) {
	// 2024-03-01 is a Friday in ISO week 9
	assert.Equal(t, "2024-W09", windowID(WindowWeekly, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	// Sunday still week 9, Monday rolls to week 10
	assert.Equal(t, "2024-W09", windowID(WindowWeekly, time.Date(2024, 3, 3, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-W10", windowID(WindowWeekly, time.Date(2024, 3, 4, 0, 0, 1, 0, time.UTC)))
}

func TestWindowIDYearBoundary(t *testing.T) {
	// 2024-12-30 falls in ISO week 1 of 2025
	assert.Equal(t, "2025-W01", windowID(WindowWeekly, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
}

func TestWindowResetDaily(t *testing.T) {
	at := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), windowReset(WindowDaily, at))
}

func TestWindowResetWeekly(t *testing.T) {
	// Friday resets next Monday
	friday := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), windowReset(WindowWeekly, friday))

	// Monday resets the following Monday
	monday := time.Date(2024, 3, 4, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), windowReset(WindowWeekly, monday))

	// Sunday resets the next day
	sunday := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), windowReset(WindowWeekly, sunday))
}

func TestWindowRespectsLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 22:00 UTC on Mar 1 is already Mar 2 in IST
	at := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "2024-03-02", windowID(WindowDaily, at))
}
