package analytics

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/devtime/server/internal/errors"
)

type Interval string

const (
	IntervalHour  Interval = "hour"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// MaxWindowSeconds bounds a request window to just over a year.
const MaxWindowSeconds = 370 * 86400

// ParseInterval normalizes the interval to lowercase and rejects
// anything outside the supported set. The engine accepts year even
// though ingest-window validation does not.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(s)) {
	case IntervalHour:
		return IntervalHour, nil
	case IntervalDay:
		return IntervalDay, nil
	case IntervalWeek:
		return IntervalWeek, nil
	case IntervalMonth:
		return IntervalMonth, nil
	case IntervalYear:
		return IntervalYear, nil
	default:
		return "", apperrors.NewFieldError("interval", "invalid")
	}
}

// Window is the common time-window request: [Start, End) in seconds,
// bucketed by Interval in the caller's Timezone.
type Window struct {
	Start      int64
	End        int64
	Timezone   string
	Interval   string
	Cumulative bool
}

// Resolve validates the window and loads its timezone and interval.
func (w Window) Resolve() (*time.Location, Interval, error) {
	fields := map[string][]string{}

	if w.Start < 0 {
		fields["start"] = append(fields["start"], "negative")
	}
	if w.Start > w.End {
		fields["start"] = append(fields["start"], "after_end")
	}
	if w.End-w.Start > MaxWindowSeconds {
		fields["end"] = append(fields["end"], "window_too_long")
	}

	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		fields["timezone"] = append(fields["timezone"], "invalid")
	}

	interval, err := ParseInterval(w.Interval)
	if err != nil {
		fields["interval"] = append(fields["interval"], "invalid")
	}

	if len(fields) > 0 {
		return nil, "", apperrors.NewValidationError(fields)
	}

	return loc, interval, nil
}

// Bucket is one interval step of the window, in the caller's zone.
type Bucket struct {
	Start time.Time
	End   time.Time
}

// MakeBuckets steps start→end by interval. Hour, day and week are
// fixed durations; month steps the calendar month (rolling the year
// when it wraps) and year steps the year field. The loop emits a
// bucket for every start ≤ end, so an N-step window yields N+1 buckets.
func MakeBuckets(start, end int64, loc *time.Location, interval Interval) []Bucket {
	var buckets []Bucket
	cur := time.Unix(start, 0).In(loc)
	for !cur.After(time.Unix(end, 0).In(loc)) {
		next := stepBucket(cur, interval, loc)
		buckets = append(buckets, Bucket{Start: cur, End: next})
		cur = next
	}
	return buckets
}

func stepBucket(cur time.Time, interval Interval, loc *time.Location) time.Time {
	switch interval {
	case IntervalHour:
		return cur.Add(time.Hour)
	case IntervalDay:
		return cur.Add(24 * time.Hour)
	case IntervalWeek:
		return cur.Add(7 * 24 * time.Hour)
	case IntervalMonth:
		y, m, d := cur.Date()
		hh, mm, ss := cur.Clock()
		return time.Date(y, m+1, d, hh, mm, ss, 0, loc)
	case IntervalYear:
		y, m, d := cur.Date()
		hh, mm, ss := cur.Clock()
		return time.Date(y+1, m, d, hh, mm, ss, 0, loc)
	default:
		return cur.Add(24 * time.Hour)
	}
}

// bucketIndex finds the first bucket b with b.Start ≤ ts < b.End, or
// -1 when the timestamp falls outside every bucket.
func bucketIndex(buckets []Bucket, ts int64) int {
	for i, b := range buckets {
		if ts >= b.Start.Unix() && ts < b.End.Unix() {
			return i
		}
	}
	return -1
}

// hours1dp converts seconds to hours rounded to one decimal place.
func hours1dp(seconds int64) float64 {
	return math.Round(float64(seconds)/3600*10) / 10
}
