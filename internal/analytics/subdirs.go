package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/devtime/server/internal/models"
)

// OtherPath is the synthetic entry sub-threshold paths merge into.
const OtherPath = "other"

// cutPath truncates a file path to its first depth components:
// cutPath("./a/b/c/d", 2) is "/a/b". The result is absolute with no
// trailing slash, which makes the function idempotent.
func cutPath(path string, depth int) string {
	p := strings.TrimPrefix(path, "./")
	p = strings.TrimPrefix(p, "/")

	parts := strings.Split(p, "/")
	if len(parts) > depth {
		parts = parts[:depth]
	}
	return "/" + strings.Join(parts, "/")
}

// SubdirQuery extends the window with the roll-up depth and the
// optional keep thresholds.
type SubdirQuery struct {
	Window
	Depth         int
	TimeThreshold *float64
	LineThreshold *int64
}

// defaultThresholds derives the keep thresholds from the window span:
// wider windows and coarser intervals push the cutoff up so the paths
// list stays readable.
func defaultThresholds(start, end int64, interval Interval, cumulative bool) (float64, int64) {
	var days float64
	switch interval {
	case IntervalYear:
		days = 365
	case IntervalMonth:
		days = 30
	case IntervalWeek:
		days = 7
	default:
		days = 1
	}

	mult := math.Sqrt(days)
	if cumulative {
		mult *= 2
	}

	span := math.Sqrt(float64(end - start))
	timeThreshold := span * mult / 5000.0
	lineThreshold := int64(math.Floor(span * mult / 51.0))
	return timeThreshold, lineThreshold
}

type subdirAcc struct {
	seconds      int64
	linesAdded   int64
	linesRemoved int64
	commits      map[string]bool
	users        map[string]bool
}

func newSubdirAcc() *subdirAcc {
	return &subdirAcc{commits: map[string]bool{}, users: map[string]bool{}}
}

// buildSubdirTimeline groups edit facts by truncated path within each
// outer bucket, then fuses everything under the thresholds into the
// "other" entry per bucket.
func buildSubdirTimeline(edits []models.EditFact, buckets []Bucket, q SubdirQuery, interval Interval) *models.SubdirTimeline {
	timeThreshold, lineThreshold := defaultThresholds(q.Start, q.End, interval, q.Cumulative)
	if q.TimeThreshold != nil {
		timeThreshold = *q.TimeThreshold
	}
	if q.LineThreshold != nil {
		lineThreshold = *q.LineThreshold
	}

	// Phase C: accumulate per (bucket, cut path).
	accs := make([]map[string]*subdirAcc, len(buckets))
	for i := range accs {
		accs[i] = map[string]*subdirAcc{}
	}

	for _, edit := range edits {
		if strings.HasSuffix(edit.Path, ".app") {
			continue
		}

		idx := bucketIndex(buckets, edit.Timestamp)
		if idx < 0 {
			continue
		}

		path := cutPath(edit.Path, q.Depth)
		last := idx
		if q.Cumulative {
			last = len(buckets) - 1
		}
		for i := idx; i <= last; i++ {
			acc := accs[i][path]
			if acc == nil {
				acc = newSubdirAcc()
				accs[i][path] = acc
			}
			acc.seconds += edit.TimeSeconds
			acc.linesAdded += edit.LinesAdded
			acc.linesRemoved += edit.LinesDeleted
			acc.commits[edit.CommitHash] = true
			acc.users[edit.User] = true
		}
	}

	// Threshold promotion: keep entries above either cutoff, fuse the
	// rest into "other" by summing time, lines and commits and taking
	// the maximum user count across the merged entries.
	keptPaths := map[string]bool{}
	out := &models.SubdirTimeline{Data: make([]models.SubdirBucket, len(buckets))}

	for i, b := range buckets {
		entries := map[string]models.SubdirEntry{}
		other := models.SubdirEntry{Path: OtherPath}

		for path, acc := range accs[i] {
			entry := entryFromAcc(path, acc)
			if entry.TimeHours > timeThreshold || (acc.linesAdded+acc.linesRemoved) > lineThreshold {
				keptPaths[path] = true
				entries[path] = entry
				continue
			}

			other.TimeHours += entry.TimeHours
			other.LinesAdded += entry.LinesAdded
			other.LinesRemoved += entry.LinesRemoved
			other.Commits += entry.Commits
			if entry.UserCount > other.UserCount {
				other.UserCount = entry.UserCount
			}
		}

		entries[OtherPath] = other
		out.Data[i] = models.SubdirBucket{
			Start:   b.Start.Format(time.RFC3339),
			End:     b.End.Format(time.RFC3339),
			Entries: entries,
		}
	}

	for path := range keptPaths {
		out.Paths = append(out.Paths, path)
	}
	sort.Strings(out.Paths)
	out.Paths = append(out.Paths, OtherPath)

	return out
}

// entryFromAcc finalizes one roll-up entry. Time is normalized per
// contributing user, answering what the directory cost per person.
func entryFromAcc(path string, acc *subdirAcc) models.SubdirEntry {
	userCount := len(acc.users)
	divisor := userCount
	if divisor < 1 {
		divisor = 1
	}

	return models.SubdirEntry{
		Path:         path,
		TimeHours:    hours1dp(acc.seconds / int64(divisor)),
		LinesAdded:   acc.linesAdded,
		LinesRemoved: acc.linesRemoved,
		Commits:      len(acc.commits),
		UserCount:    userCount,
	}
}
