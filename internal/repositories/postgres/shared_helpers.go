package postgres

import (
	"gorm.io/gorm"

	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
)

// ApplyReportRunFilters adds the WHERE clauses of the run filters
func ApplyReportRunFilters(query *gorm.DB, filters repositories.ReportRunFilters) *gorm.DB {
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filters.RequestedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort orders by creation time and pages the query.
// filters must already be normalized.
func ApplyPaginationAndSort(query *gorm.DB, filters repositories.ReportRunFilters) *gorm.DB {
	query = query.Order("created_at " + filters.SortOrder).Order("id")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
