package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

type historyService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewHistoryService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) HistoryService {
	return &historyService{repo: repo, logger: logger, validator: v}
}

func (s *historyService) ListRuns(ctx context.Context, query *RunListQuery) (*RunListResponse, error) {
	if query == nil {
		query = &RunListQuery{}
	}
	if errs := s.validator.GetBusinessValidator().ValidateRunList(query); len(errs) > 0 {
		return nil, errs
	}

	filters := repositories.ReportRunFilters{
		DateFrom:  query.DateFrom,
		Limit:     query.Limit,
		Offset:    query.Offset,
		SortOrder: query.SortOrder,
	}
	if query.Kind != "" {
		kind := models.ReportKind(query.Kind)
		filters.Kind = &kind
	}
	if query.RequestedBy != "" {
		filters.RequestedBy = &query.RequestedBy
	}
	if query.DateTo != nil {
		// date_to names a whole day
		end := query.DateTo.Add(24*time.Hour - time.Nanosecond)
		filters.DateTo = &end
	}
	filters = filters.Normalize()

	runs, total, err := s.repo.ReportRun().List(ctx, filters)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list report runs", "error", err)
		return nil, err
	}

	return &RunListResponse{
		Runs:   runs,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

func (s *historyService) GetRun(ctx context.Context, id string) (*models.ReportRun, error) {
	run, err := s.repo.ReportRun().GetByID(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err)
	}
	return run, nil
}
