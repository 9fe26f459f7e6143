package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange_SymmetricWindow(t *testing.T) {
	center := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	dates := DateRange(center, 7, 7)
	require.Len(t, dates, 15)

	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC), dates[14])
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]), "dates must ascend")
		assert.Equal(t, 24*time.Hour, dates[i].Sub(dates[i-1]))
	}
}

func TestDateRange_DiscardsTimeOfDay(t *testing.T) {
	center := time.Date(2024, 6, 15, 18, 42, 11, 0, time.UTC)

	dates := DateRange(center, 0, 0)
	require.Len(t, dates, 1)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), dates[0])
}

func TestDateRange_CrossesMonthBoundary(t *testing.T) {
	center := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	dates := DateRange(center, 2, 1)
	require.Len(t, dates, 4)
	// 2024 is a leap year.
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), dates[3])
}
