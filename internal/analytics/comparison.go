package analytics

import (
	"sort"

	"github.com/devtime/server/internal/models"
)

// ComparisonQuery expands a list of group names into one cohort and
// highlights the subset matching the repo/branch/user filters. Empty
// filters match everything.
type ComparisonQuery struct {
	Window
	Groups   []string
	Repos    []int64
	Branches []string
	Users    []string
}

type partitionKey struct {
	user   string
	repoID int64
	branch string
}

type partitionAcc struct {
	seconds      int64
	commits      map[string]bool
	linesAdded   int64
	linesRemoved int64
	matched      bool
}

// buildComparison collapses comparison facts into the cohort wrapper:
// one Stat per metric, the cohort dimension lists, and the full plus
// filtered timelines.
func buildComparison(facts []models.ComparisonFact, buckets []Bucket, q ComparisonQuery, repos []models.ComparisonRepo) *models.Comparison {
	partitions := map[partitionKey]*partitionAcc{}
	branches := map[string]bool{}
	users := map[string]bool{}

	for _, f := range facts {
		branches[f.Branch] = true
		users[f.User] = true

		key := partitionKey{user: f.User, repoID: f.RepositoryID, branch: f.Branch}
		acc := partitions[key]
		if acc == nil {
			acc = &partitionAcc{
				commits: map[string]bool{},
				matched: matchesFilters(key, q),
			}
			partitions[key] = acc
		}
		acc.seconds += f.TimeSeconds
		acc.commits[f.CommitHash] = true
		acc.linesAdded += f.LinesAdded
		acc.linesRemoved += f.LinesDeleted
	}

	// Partitions ordered by time descending drive every Stat's rank.
	ordered := make([]*partitionAcc, 0, len(partitions))
	for _, acc := range partitions {
		ordered = append(ordered, acc)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].seconds > ordered[j].seconds
	})

	var highlightedSeconds int64
	for _, acc := range ordered {
		if acc.matched {
			highlightedSeconds += acc.seconds
		}
	}
	rank := 1
	for _, acc := range ordered {
		if acc.seconds > highlightedSeconds {
			rank++
		}
	}

	samples := make([]models.SampleFact, 0, len(facts))
	filtered := make([]models.SampleFact, 0, len(facts))
	for _, f := range facts {
		sample := models.SampleFact{User: f.User, Timestamp: f.Timestamp, TimeSeconds: f.TimeSeconds}
		samples = append(samples, sample)
		key := partitionKey{user: f.User, repoID: f.RepositoryID, branch: f.Branch}
		if partitions[key].matched {
			filtered = append(filtered, sample)
		}
	}

	return &models.Comparison{
		Branches:         sortedKeys(branches),
		Users:            sortedKeys(users),
		Repos:            repos,
		Time:             buildStat(ordered, rank, func(a *partitionAcc) float64 { return hours1dp(a.seconds) }),
		Commits:          buildStat(ordered, rank, func(a *partitionAcc) float64 { return float64(len(a.commits)) }),
		LinesAdded:       buildStat(ordered, rank, func(a *partitionAcc) float64 { return float64(a.linesAdded) }),
		LinesRemoved:     buildStat(ordered, rank, func(a *partitionAcc) float64 { return float64(a.linesRemoved) }),
		Timeline:         buildTimeline(samples, buckets, false),
		FilteredTimeline: buildTimeline(filtered, buckets, false),
	}
}

func matchesFilters(key partitionKey, q ComparisonQuery) bool {
	return (len(q.Repos) == 0 || containsInt(q.Repos, key.repoID)) &&
		(len(q.Branches) == 0 || containsString(q.Branches, key.branch)) &&
		(len(q.Users) == 0 || containsString(q.Users, key.user))
}

func buildStat(ordered []*partitionAcc, rank int, value func(*partitionAcc) float64) models.Stat {
	stat := models.Stat{Rank: rank, Data: make([]models.RankValue, 0, len(ordered))}
	for i, acc := range ordered {
		v := value(acc)
		stat.Total += v
		if acc.matched {
			stat.Highlighted += v
		}
		stat.Data = append(stat.Data, models.RankValue{Rank: i + 1, Value: v})
	}
	return stat
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsInt(list []int64, v int64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
