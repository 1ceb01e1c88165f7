package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtime/server/internal/models"
)

func dayBuckets(t *testing.T, days int) []Bucket {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	buckets := MakeBuckets(start, start+int64(days)*86400, time.UTC, IntervalDay)
	require.Len(t, buckets, days+1)
	return buckets
}

func TestBuildTimeline(t *testing.T) {
	buckets := dayBuckets(t, 2)
	base := buckets[0].Start.Unix()

	samples := []models.SampleFact{
		{User: "ada", Timestamp: base + 100, TimeSeconds: 3600},
		{User: "grace", Timestamp: base + 200, TimeSeconds: 1800},
		{User: "ada", Timestamp: base + 2*86400 + 100, TimeSeconds: 7200},
		{User: "ada", Timestamp: base - 1, TimeSeconds: 99999}, // outside the window
	}

	out := buildTimeline(samples, buckets, false)

	require.Len(t, out, 3)
	assert.Equal(t, 1.5, out[0].TimeHours)
	assert.Equal(t, 2, out[0].UserCount)
	assert.Equal(t, 0.0, out[1].TimeHours)
	assert.Equal(t, 0, out[1].UserCount)
	assert.Equal(t, 2.0, out[2].TimeHours)
	assert.Equal(t, 1, out[2].UserCount)

	assert.Equal(t, buckets[0].Start.Format(time.RFC3339), out[0].Start)
	assert.Equal(t, buckets[0].End.Format(time.RFC3339), out[0].End)
}

func TestBuildTimelineCumulative(t *testing.T) {
	buckets := dayBuckets(t, 2)
	base := buckets[0].Start.Unix()

	samples := []models.SampleFact{
		{User: "ada", Timestamp: base + 100, TimeSeconds: 3600},
		{User: "grace", Timestamp: base + 86400 + 100, TimeSeconds: 1800},
	}

	out := buildTimeline(samples, buckets, true)

	require.Len(t, out, 3)
	assert.Equal(t, 1.0, out[0].TimeHours)
	assert.Equal(t, 1, out[0].UserCount)
	assert.Equal(t, 1.5, out[1].TimeHours)
	assert.Equal(t, 2, out[1].UserCount)

	// The last cumulative bucket carries the whole window.
	flat := buildTimeline(samples, buckets, false)
	var total float64
	for _, b := range flat {
		total += b.TimeHours
	}
	assert.Equal(t, total, out[2].TimeHours)
	assert.Equal(t, 2, out[2].UserCount)
}
