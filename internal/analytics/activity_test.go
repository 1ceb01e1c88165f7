package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

func TestActivityBuckets(t *testing.T) {
	tests := []struct {
		interval   Interval
		count      int
		firstLabel string
		firstKey   int
		lastLabel  string
		lastKey    int
	}{
		{IntervalDay, 24, "0", 0, "23", 23},
		{IntervalWeek, 7, "Monday", 1, "Sunday", 7},
		{IntervalMonth, 31, "1", 0, "31", 30},
		{IntervalYear, 12, "1", 0, "12", 11},
	}

	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			buckets, err := activityBuckets(tt.interval)
			require.NoError(t, err)
			require.Len(t, buckets, tt.count)
			assert.Equal(t, tt.firstLabel, buckets[0].Label)
			assert.Equal(t, tt.firstKey, buckets[0].LabelKey)
			assert.Equal(t, tt.lastLabel, buckets[tt.count-1].Label)
			assert.Equal(t, tt.lastKey, buckets[tt.count-1].LabelKey)
		})
	}

	t.Run("hour has no cyclic position", func(t *testing.T) {
		_, err := activityBuckets(IntervalHour)
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestActivitySlot(t *testing.T) {
	monday := time.Date(2023, 1, 2, 10, 30, 0, 0, time.UTC)
	sunday := time.Date(2023, 1, 8, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, activitySlot(monday.Unix(), IntervalDay, time.UTC))
	assert.Equal(t, 0, activitySlot(monday.Unix(), IntervalWeek, time.UTC))
	assert.Equal(t, 6, activitySlot(sunday.Unix(), IntervalWeek, time.UTC))
	assert.Equal(t, 1, activitySlot(monday.Unix(), IntervalMonth, time.UTC))
	assert.Equal(t, 0, activitySlot(monday.Unix(), IntervalYear, time.UTC))
}

func TestBuildActivity(t *testing.T) {
	monday := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC).Unix()
	tuesday := time.Date(2023, 1, 3, 14, 0, 0, 0, time.UTC).Unix()

	edits := []models.EditFact{
		{User: "ada", Timestamp: monday, TimeSeconds: 3600, LinesAdded: 10, LinesDeleted: 2},
		{User: "grace", Timestamp: monday, TimeSeconds: 1800, LinesAdded: 5, LinesDeleted: 1},
		{User: "ada", Timestamp: tuesday, TimeSeconds: 7200, LinesAdded: 20, LinesDeleted: 4},
	}

	out, err := buildActivity(edits, IntervalWeek, time.UTC, false)
	require.NoError(t, err)
	require.Len(t, out, 7)

	assert.Equal(t, 1.5, out[0].TimeHours)
	assert.Equal(t, int64(15), out[0].LinesAdded)
	assert.Equal(t, int64(3), out[0].LinesRemoved)
	assert.Equal(t, 2, out[0].UserCount)

	assert.Equal(t, 2.0, out[1].TimeHours)
	assert.Equal(t, 1, out[1].UserCount)

	for i := 2; i < 7; i++ {
		assert.Equal(t, 0.0, out[i].TimeHours)
		assert.Equal(t, 0, out[i].UserCount)
	}
}

func TestBuildActivityCumulative(t *testing.T) {
	monday := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC).Unix()
	wednesday := time.Date(2023, 1, 4, 9, 0, 0, 0, time.UTC).Unix()

	edits := []models.EditFact{
		{User: "ada", Timestamp: monday, TimeSeconds: 3600, LinesAdded: 10},
		{User: "grace", Timestamp: wednesday, TimeSeconds: 3600, LinesAdded: 6},
	}

	out, err := buildActivity(edits, IntervalWeek, time.UTC, true)
	require.NoError(t, err)
	require.Len(t, out, 7)

	// Monday's edit reaches every slot; Wednesday's starts at slot 2.
	assert.Equal(t, 1.0, out[0].TimeHours)
	assert.Equal(t, 1.0, out[1].TimeHours)
	assert.Equal(t, 2.0, out[2].TimeHours)
	assert.Equal(t, 2.0, out[6].TimeHours)
	assert.Equal(t, int64(16), out[6].LinesAdded)
	assert.Equal(t, 2, out[6].UserCount)
}
