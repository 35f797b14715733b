package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
)

type ReportRunPostgreSQL struct {
	db *gorm.DB
}

func NewReportRunPostgreSQL(db *gorm.DB) repositories.ReportRunRepository {
	return &ReportRunPostgreSQL{db: db}
}

func (r *ReportRunPostgreSQL) Create(ctx context.Context, run *models.ReportRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create report run: %w", err)
	}
	return nil
}

func (r *ReportRunPostgreSQL) GetByID(ctx context.Context, id string) (*models.ReportRun, error) {
	var run models.ReportRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get report run: %w", err)
	}
	return &run, nil
}

func (r *ReportRunPostgreSQL) List(ctx context.Context, filters repositories.ReportRunFilters) ([]*models.ReportRun, int64, error) {
	filters = filters.Normalize()
	var runs []*models.ReportRun
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).Model(&models.ReportRun{})
	query = ApplyReportRunFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count report runs: %w", err)
	}

	// then apply pagination and sorting
	query = ApplyPaginationAndSort(query, filters)

	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list report runs: %w", err)
	}
	return runs, total, nil
}
