package analytics

import (
	"strconv"
	"time"

	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/models"
)

var weekdayLabels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// activityBuckets returns the fixed bucket array for the cyclic view:
// 24 hours of day, 7 ISO weekdays, 31 days of month or 12 months of
// year. The hour interval has no cyclic position and is rejected.
func activityBuckets(interval Interval) ([]models.ActivityBucket, error) {
	switch interval {
	case IntervalDay:
		out := make([]models.ActivityBucket, 24)
		for i := range out {
			out[i] = models.ActivityBucket{Label: strconv.Itoa(i), LabelKey: i}
		}
		return out, nil
	case IntervalWeek:
		out := make([]models.ActivityBucket, 7)
		for i := range out {
			out[i] = models.ActivityBucket{Label: weekdayLabels[i], LabelKey: i + 1}
		}
		return out, nil
	case IntervalMonth:
		out := make([]models.ActivityBucket, 31)
		for i := range out {
			out[i] = models.ActivityBucket{Label: strconv.Itoa(i + 1), LabelKey: i}
		}
		return out, nil
	case IntervalYear:
		out := make([]models.ActivityBucket, 12)
		for i := range out {
			out[i] = models.ActivityBucket{Label: strconv.Itoa(i + 1), LabelKey: i}
		}
		return out, nil
	default:
		return nil, apperrors.NewFieldError("interval", "invalid")
	}
}

// activitySlot computes the cyclic position of a timestamp for the
// interval, as an index into the fixed bucket array.
func activitySlot(ts int64, interval Interval, loc *time.Location) int {
	t := time.Unix(ts, 0).In(loc)
	switch interval {
	case IntervalDay:
		return t.Hour()
	case IntervalWeek:
		// ISO weekday: Monday is 1, Sunday is 7.
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return wd - 1
	case IntervalMonth:
		return t.Day() - 1
	case IntervalYear:
		return int(t.Month()) - 1
	default:
		return 0
	}
}

// buildActivity collapses edit facts into the cyclic activity buckets.
// Cumulative mode credits every bucket at or after the matching slot.
func buildActivity(edits []models.EditFact, interval Interval, loc *time.Location, cumulative bool) ([]models.ActivityBucket, error) {
	buckets, err := activityBuckets(interval)
	if err != nil {
		return nil, err
	}

	seconds := make([]int64, len(buckets))
	users := make([]map[string]bool, len(buckets))
	for i := range users {
		users[i] = map[string]bool{}
	}

	for _, edit := range edits {
		slot := activitySlot(edit.Timestamp, interval, loc)

		last := slot
		if cumulative {
			last = len(buckets) - 1
		}
		for i := slot; i <= last; i++ {
			seconds[i] += edit.TimeSeconds
			buckets[i].LinesAdded += edit.LinesAdded
			buckets[i].LinesRemoved += edit.LinesDeleted
			users[i][edit.User] = true
		}
	}

	for i := range buckets {
		buckets[i].TimeHours = hours1dp(seconds[i])
		buckets[i].UserCount = len(users[i])
	}

	return buckets, nil
}
