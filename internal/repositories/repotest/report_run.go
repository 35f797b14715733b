// Package repotest holds the behaviour shared by every ReportRunRepository
// implementation, run against each backend from its own tests.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo repositories.ReportRunRepository) {
	t.Helper()
	runs := []*models.ReportRun{
		{ID: "run-1", Kind: models.ReportWeekly, SourceName: "week1.xlsx", RowCount: 30, RequestedBy: "t1", CreatedAt: base},
		{ID: "run-2", Kind: models.ReportMonthly, SourceName: "march.csv", RowCount: 28, RequestedBy: "t1", CreatedAt: base.Add(time.Hour)},
		{ID: "run-3", Kind: models.ReportPaper, SourceName: "paper.csv", RowCount: 12, RequestedBy: "t2", CreatedAt: base.Add(2 * time.Hour),
			Summary: datatypes.JSON(`{"total_score":130}`)},
		{ID: "run-4", Kind: models.ReportWeekly, SourceName: "week2.xlsx", RowCount: 31, RequestedBy: "t2", CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, run := range runs {
		require.NoError(t, repo.Create(context.Background(), run))
	}
}

func ids(runs []*models.ReportRun) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

// ReportRunRepository exercises Create, GetByID and List.
func ReportRunRepository(t *testing.T, newRepo func(t *testing.T) repositories.ReportRunRepository) {
	ctx := context.Background()

	t.Run("GetByID", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		run, err := repo.GetByID(ctx, "run-3")
		require.NoError(t, err)
		assert.Equal(t, models.ReportPaper, run.Kind)
		assert.Equal(t, "paper.csv", run.SourceName)
		assert.Equal(t, 12, run.RowCount)
		assert.JSONEq(t, `{"total_score":130}`, string(run.Summary))
		assert.True(t, base.Add(2*time.Hour).Equal(run.CreatedAt))

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrRunNotFound)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		runs, total, err := repo.List(ctx, repositories.ReportRunFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Equal(t, []string{"run-4", "run-3", "run-2", "run-1"}, ids(runs))
	})

	t.Run("ListFiltersAndPages", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		kind := models.ReportWeekly
		runs, total, err := repo.List(ctx, repositories.ReportRunFilters{Kind: &kind, SortOrder: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"run-1", "run-4"}, ids(runs))

		who := "t1"
		runs, total, err = repo.List(ctx, repositories.ReportRunFilters{RequestedBy: &who})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, []string{"run-2", "run-1"}, ids(runs))

		from := base.Add(30 * time.Minute)
		to := base.Add(150 * time.Minute)
		runs, _, err = repo.List(ctx, repositories.ReportRunFilters{DateFrom: &from, DateTo: &to})
		require.NoError(t, err)
		assert.Equal(t, []string{"run-3", "run-2"}, ids(runs))

		runs, total, err = repo.List(ctx, repositories.ReportRunFilters{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Equal(t, []string{"run-3", "run-2"}, ids(runs))

		runs, total, err = repo.List(ctx, repositories.ReportRunFilters{Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Empty(t, runs)
	})
}
