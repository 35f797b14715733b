package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/repotest"
)

func TestReportRunSQLite(t *testing.T) {
	repotest.ReportRunRepository(t, func(t *testing.T) repositories.ReportRunRepository {
		repo, err := NewRepository(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo.ReportRun()
	})
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.ReportRun().Create(ctx, &models.ReportRun{
		ID:         "run-1",
		Kind:       models.ReportMonthly,
		SourceName: "march.xlsx",
		RowCount:   5,
		CreatedAt:  time.Now().UTC(),
	}))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	run, err := reopened.ReportRun().GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", run.SourceName)
	assert.Nil(t, []byte(run.Summary))
}
