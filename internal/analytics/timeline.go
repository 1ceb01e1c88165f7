package analytics

import (
	"time"

	"github.com/devtime/server/internal/models"
)

// buildTimeline collapses sample facts into the interval timeline. Each
// sample credits the bucket containing its timestamp; in cumulative
// mode it also credits every later bucket.
func buildTimeline(samples []models.SampleFact, buckets []Bucket, cumulative bool) []models.TimelineBucket {
	seconds := make([]int64, len(buckets))
	users := make([]map[string]bool, len(buckets))
	for i := range users {
		users[i] = map[string]bool{}
	}

	for _, sample := range samples {
		idx := bucketIndex(buckets, sample.Timestamp)
		if idx < 0 {
			continue
		}

		last := idx
		if cumulative {
			last = len(buckets) - 1
		}
		for i := idx; i <= last; i++ {
			seconds[i] += sample.TimeSeconds
			users[i][sample.User] = true
		}
	}

	out := make([]models.TimelineBucket, len(buckets))
	for i, b := range buckets {
		out[i] = models.TimelineBucket{
			Start:     b.Start.Format(time.RFC3339),
			End:       b.End.Format(time.RFC3339),
			TimeHours: hours1dp(seconds[i]),
			UserCount: len(users[i]),
		}
	}
	return out
}
