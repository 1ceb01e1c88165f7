package analytics

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/devtime/server/internal/db"
	apperrors "github.com/devtime/server/internal/errors"
	"github.com/devtime/server/internal/groups"
	"github.com/devtime/server/internal/models"
)

// Engine produces the read views. Every view shares the same first
// phase: resolve the root group's descendants to a repository set and
// scan the facts in the window; the views differ only in how the rows
// collapse.
type Engine struct {
	store     db.Store
	hierarchy *groups.Service
	logger    *logrus.Logger
}

func NewEngine(store db.Store, hierarchy *groups.Service, logger *logrus.Logger) *Engine {
	return &Engine{
		store:     store,
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// Timeline is the interval-timeline view over time samples.
func (e *Engine) Timeline(ctx context.Context, groupName string, w Window) ([]models.TimelineBucket, error) {
	loc, interval, err := w.Resolve()
	if err != nil {
		return nil, err
	}

	repoIDs, err := e.hierarchy.RepositoryIDs(ctx, groupName)
	if err != nil {
		return nil, err
	}

	samples, err := e.store.TimeSampleFacts(ctx, repoIDs, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	buckets := MakeBuckets(w.Start, w.End, loc, interval)
	return buildTimeline(samples, buckets, w.Cumulative), nil
}

// Activity is the cyclic-activity view over file edits.
func (e *Engine) Activity(ctx context.Context, groupName string, w Window) ([]models.ActivityBucket, error) {
	loc, interval, err := w.Resolve()
	if err != nil {
		return nil, err
	}

	repoIDs, err := e.hierarchy.RepositoryIDs(ctx, groupName)
	if err != nil {
		return nil, err
	}

	edits, err := e.store.FileEditFacts(ctx, repoIDs, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	return buildActivity(edits, interval, loc, w.Cumulative)
}

// SubdirTimeline is the per-bucket subdirectory roll-up view.
func (e *Engine) SubdirTimeline(ctx context.Context, groupName string, q SubdirQuery) (*models.SubdirTimeline, error) {
	if q.Depth < 1 {
		return nil, apperrors.NewFieldError("depth", "invalid")
	}

	loc, interval, err := q.Resolve()
	if err != nil {
		return nil, err
	}

	repoIDs, err := e.hierarchy.RepositoryIDs(ctx, groupName)
	if err != nil {
		return nil, err
	}

	edits, err := e.store.FileEditFacts(ctx, repoIDs, q.Start, q.End)
	if err != nil {
		return nil, err
	}

	buckets := MakeBuckets(q.Start, q.End, loc, interval)
	return buildSubdirTimeline(edits, buckets, q, interval), nil
}

// Comparison is the cross-cohort view over the union of the requested
// groups' repositories.
func (e *Engine) Comparison(ctx context.Context, q ComparisonQuery) (*models.Comparison, error) {
	if len(q.Groups) == 0 {
		return nil, apperrors.NewFieldError("groups", "required")
	}

	loc, interval, err := q.Resolve()
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	var repoIDs []int64
	for _, name := range q.Groups {
		ids, err := e.hierarchy.RepositoryIDs(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				repoIDs = append(repoIDs, id)
			}
		}
	}

	facts, err := e.store.ComparisonFacts(ctx, repoIDs, q.Start, q.End)
	if err != nil {
		return nil, err
	}

	repos, err := e.store.GetRepositoriesByIDs(ctx, repoIDs)
	if err != nil {
		return nil, err
	}
	repoList := make([]models.ComparisonRepo, 0, len(repos))
	for _, r := range repos {
		repoList = append(repoList, models.ComparisonRepo{
			ID:   r.ID,
			Name: fmt.Sprintf("%s-%s-%s", r.Platform, r.Owner, r.Slug),
		})
	}

	buckets := MakeBuckets(q.Start, q.End, loc, interval)
	return buildComparison(facts, buckets, q, repoList), nil
}

// Stats is the per-user and per-path stats view.
func (e *Engine) Stats(ctx context.Context, groupName string, start, end int64, depth int) (*models.GroupStats, error) {
	if err := validateSpan(start, end); err != nil {
		return nil, err
	}
	if depth < 1 {
		return nil, apperrors.NewFieldError("depth", "invalid")
	}

	repoIDs, err := e.hierarchy.RepositoryIDs(ctx, groupName)
	if err != nil {
		return nil, err
	}

	edits, err := e.store.FileEditFacts(ctx, repoIDs, start, end)
	if err != nil {
		return nil, err
	}

	return buildGroupStats(edits, depth), nil
}

// Export streams the denormalized per-(commit, path) rows.
func (e *Engine) Export(ctx context.Context, groupName string, start, end int64) ([]models.ExportRow, error) {
	if err := validateSpan(start, end); err != nil {
		return nil, err
	}

	repoIDs, err := e.hierarchy.RepositoryIDs(ctx, groupName)
	if err != nil {
		return nil, err
	}

	rows, err := e.store.ExportRows(ctx, repoIDs, start, end)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.ExportRow{}
	}

	return rows, nil
}

func validateSpan(start, end int64) error {
	fields := map[string][]string{}
	if start < 0 {
		fields["start"] = append(fields["start"], "negative")
	}
	if start > end {
		fields["start"] = append(fields["start"], "after_end")
	}
	if end-start > MaxWindowSeconds {
		fields["end"] = append(fields["end"], "window_too_long")
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}
