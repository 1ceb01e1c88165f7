package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtime/server/internal/models"
)

func comparisonFixture(t *testing.T) ([]models.ComparisonFact, []Bucket) {
	t.Helper()
	buckets := dayBuckets(t, 1)
	base := buckets[0].Start.Unix()

	facts := []models.ComparisonFact{
		{User: "ada", RepositoryID: 1, Repository: "github-org-core", Branch: "main", CommitHash: "c1", Timestamp: base + 100, TimeSeconds: 3600, LinesAdded: 60, LinesDeleted: 6},
		{User: "ada", RepositoryID: 1, Repository: "github-org-core", Branch: "main", CommitHash: "c2", Timestamp: base + 86400 + 100, TimeSeconds: 3600, LinesAdded: 40, LinesDeleted: 4},
		{User: "grace", RepositoryID: 1, Repository: "github-org-core", Branch: "main", CommitHash: "c3", Timestamp: base + 200, TimeSeconds: 3600, LinesAdded: 50, LinesDeleted: 5},
	}
	return facts, buckets
}

func TestBuildComparison(t *testing.T) {
	facts, buckets := comparisonFixture(t)
	repos := []models.ComparisonRepo{{ID: 1, Name: "github-org-core"}}

	q := ComparisonQuery{Users: []string{"ada"}}
	out := buildComparison(facts, buckets, q, repos)

	assert.Equal(t, []string{"main"}, out.Branches)
	assert.Equal(t, []string{"ada", "grace"}, out.Users)
	assert.Equal(t, repos, out.Repos)

	// Two partitions: (ada, 1, main) with 2h and (grace, 1, main) with
	// 1h. Ada's aggregate tops the ordering, so the highlight ranks 1.
	assert.Equal(t, 3.0, out.Time.Total)
	assert.Equal(t, 2.0, out.Time.Highlighted)
	assert.Equal(t, 1, out.Time.Rank)
	require.Len(t, out.Time.Data, 2)
	assert.Equal(t, models.RankValue{Rank: 1, Value: 2.0}, out.Time.Data[0])
	assert.Equal(t, models.RankValue{Rank: 2, Value: 1.0}, out.Time.Data[1])

	assert.Equal(t, 3.0, out.Commits.Total)
	assert.Equal(t, 2.0, out.Commits.Highlighted)
	assert.Equal(t, 150.0, out.LinesAdded.Total)
	assert.Equal(t, 100.0, out.LinesAdded.Highlighted)
	assert.Equal(t, 15.0, out.LinesRemoved.Total)

	require.Len(t, out.Timeline, len(buckets))
	require.Len(t, out.FilteredTimeline, len(buckets))
	assert.Equal(t, 2.0, out.Timeline[0].TimeHours)
	assert.Equal(t, 2, out.Timeline[0].UserCount)
	assert.Equal(t, 1.0, out.FilteredTimeline[0].TimeHours)
	assert.Equal(t, 1, out.FilteredTimeline[0].UserCount)
}

func TestBuildComparisonRankCountsLargerPartitions(t *testing.T) {
	facts, buckets := comparisonFixture(t)

	q := ComparisonQuery{Users: []string{"grace"}}
	out := buildComparison(facts, buckets, q, nil)

	// Grace's hour is beaten by ada's two-hour partition.
	assert.Equal(t, 1.0, out.Time.Highlighted)
	assert.Equal(t, 2, out.Time.Rank)
}

func TestBuildComparisonEmptyFiltersMatchEverything(t *testing.T) {
	facts, buckets := comparisonFixture(t)

	out := buildComparison(facts, buckets, ComparisonQuery{}, nil)

	assert.Equal(t, out.Time.Total, out.Time.Highlighted)
	assert.Equal(t, 1, out.Time.Rank)
	assert.Equal(t, len(out.Timeline), len(out.FilteredTimeline))
	assert.Equal(t, out.Timeline[0].TimeHours, out.FilteredTimeline[0].TimeHours)
}

func TestBuildComparisonBranchFilter(t *testing.T) {
	buckets := dayBuckets(t, 0)
	base := buckets[0].Start.Unix()

	facts := []models.ComparisonFact{
		{User: "ada", RepositoryID: 1, Branch: "main", CommitHash: "c1", Timestamp: base + 1, TimeSeconds: 3600},
		{User: "ada", RepositoryID: 1, Branch: "dev", CommitHash: "c2", Timestamp: base + 2, TimeSeconds: 7200},
	}

	out := buildComparison(facts, buckets, ComparisonQuery{Branches: []string{"dev"}}, nil)

	assert.Equal(t, []string{"dev", "main"}, out.Branches)
	assert.Equal(t, 2.0, out.Time.Highlighted)
	assert.Equal(t, 1, out.Time.Rank)
}
