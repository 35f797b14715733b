package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
)

var ErrRunNotFound = errors.New("report run not found")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ReportRunFilters struct {
	Kind        *models.ReportKind `json:"kind"`
	RequestedBy *string            `json:"requested_by"`
	DateFrom    *time.Time         `json:"date_from"`
	DateTo      *time.Time         `json:"date_to"`
	Limit       int                `json:"limit"`
	Offset      int                `json:"offset"`
	SortOrder   string             `json:"sort_order"` // "asc", "desc"
}

// Normalize clamps the limit and defaults the sort order to newest first.
func (f ReportRunFilters) Normalize() ReportRunFilters {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.SortOrder != "asc" && f.SortOrder != "ASC" {
		f.SortOrder = "DESC"
	} else {
		f.SortOrder = "ASC"
	}
	return f
}

// Matches applies the non-paging filters to one run.
func (f ReportRunFilters) Matches(run *models.ReportRun) bool {
	if f.Kind != nil && run.Kind != *f.Kind {
		return false
	}
	if f.RequestedBy != nil && run.RequestedBy != *f.RequestedBy {
		return false
	}
	if f.DateFrom != nil && run.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && run.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

type ReportRunRepository interface {
	Create(ctx context.Context, run *models.ReportRun) error
	GetByID(ctx context.Context, id string) (*models.ReportRun, error)
	// List returns one page of runs and the total number of matches.
	List(ctx context.Context, filters ReportRunFilters) ([]*models.ReportRun, int64, error)
}
