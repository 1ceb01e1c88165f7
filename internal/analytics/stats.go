package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/devtime/server/internal/models"
)

type userAcc struct {
	seconds      int64
	commits      map[string]bool
	linesAdded   int64
	linesRemoved int64
}

type fileAcc struct {
	seconds      int64
	commits      map[string]bool
	authors      map[string]bool
	linesAdded   int64
	linesRemoved int64
}

// buildGroupStats produces the per-contributor and per-path stat rows
// from the edit facts of a group's window. Paths are truncated to the
// requested depth. The per-user time denominator is the set of unique
// commit authors touching the path.
func buildGroupStats(edits []models.EditFact, depth int) *models.GroupStats {
	userAccs := map[string]*userAcc{}
	fileAccs := map[string]*fileAcc{}

	for _, edit := range edits {
		ua := userAccs[edit.User]
		if ua == nil {
			ua = &userAcc{commits: map[string]bool{}}
			userAccs[edit.User] = ua
		}
		ua.seconds += edit.TimeSeconds
		ua.commits[edit.CommitHash] = true
		ua.linesAdded += edit.LinesAdded
		ua.linesRemoved += edit.LinesDeleted

		if strings.HasSuffix(edit.Path, ".app") {
			continue
		}
		path := cutPath(edit.Path, depth)
		fa := fileAccs[path]
		if fa == nil {
			fa = &fileAcc{commits: map[string]bool{}, authors: map[string]bool{}}
			fileAccs[path] = fa
		}
		fa.seconds += edit.TimeSeconds
		fa.commits[edit.CommitHash] = true
		fa.authors[edit.User] = true
		fa.linesAdded += edit.LinesAdded
		fa.linesRemoved += edit.LinesDeleted
	}

	stats := &models.GroupStats{
		Users: make([]models.UserStat, 0, len(userAccs)),
		Files: make([]models.FileStat, 0, len(fileAccs)),
	}

	for user, acc := range userAccs {
		hours := hours1dp(acc.seconds)
		stats.Users = append(stats.Users, models.UserStat{
			User:           user,
			TimeHours:      hours,
			Commits:        len(acc.commits),
			LinesAdded:     acc.linesAdded,
			LinesRemoved:   acc.linesRemoved,
			LinesPerHour:   linesPerHour(acc.linesAdded+acc.linesRemoved, hours),
			CommitsPerHour: commitsPerHour(len(acc.commits), hours),
			LinesPerCommit: linesPerCommit(acc.linesAdded+acc.linesRemoved, len(acc.commits)),
		})
	}
	sort.Slice(stats.Users, func(i, j int) bool {
		return stats.Users[i].TimeHours > stats.Users[j].TimeHours
	})

	for path, acc := range fileAccs {
		authorCount := len(acc.authors)
		divisor := authorCount
		if divisor < 1 {
			divisor = 1
		}
		stats.Files = append(stats.Files, models.FileStat{
			Path:         path,
			TimeHours:    hours1dp(acc.seconds),
			TimePerUser:  hours1dp(acc.seconds / int64(divisor)),
			Commits:      len(acc.commits),
			LinesAdded:   acc.linesAdded,
			LinesRemoved: acc.linesRemoved,
			UserCount:    authorCount,
		})
	}
	sort.Slice(stats.Files, func(i, j int) bool {
		return stats.Files[i].Path < stats.Files[j].Path
	})

	return stats
}

// linesPerHour integer-truncates.
func linesPerHour(lines int64, hours float64) int64 {
	if hours <= 0 {
		return 0
	}
	return int64(float64(lines) / hours)
}

// commitsPerHour rounds to one decimal place.
func commitsPerHour(commits int, hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	return math.Round(float64(commits)/hours*10) / 10
}

// linesPerCommit keeps the historical round(x*20)/10 step for
// compatibility with existing consumers.
func linesPerCommit(lines int64, commits int) float64 {
	if commits == 0 {
		return 0
	}
	x := float64(lines) / float64(commits)
	return math.Round(x*20) / 10
}
