// Package memory keeps run history in process memory. It is the fallback
// when no database is configured, so history lasts until restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
)

type Repository struct {
	runs *ReportRunMemory
}

func NewRepository() *Repository {
	return &Repository{runs: &ReportRunMemory{byID: make(map[string]*models.ReportRun)}}
}

func (r *Repository) ReportRun() repositories.ReportRunRepository {
	return r.runs
}

func (r *Repository) Ping(ctx context.Context) error {
	return nil
}

func (r *Repository) Close() error {
	return nil
}

type ReportRunMemory struct {
	mu   sync.RWMutex
	runs []*models.ReportRun
	byID map[string]*models.ReportRun
}

func (m *ReportRunMemory) Create(ctx context.Context, run *models.ReportRun) error {
	stored := *run
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, &stored)
	m.byID[stored.ID] = &stored
	return nil
}

func (m *ReportRunMemory) GetByID(ctx context.Context, id string) (*models.ReportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.byID[id]
	if !ok {
		return nil, repositories.ErrRunNotFound
	}
	out := *run
	return &out, nil
}

func (m *ReportRunMemory) List(ctx context.Context, filters repositories.ReportRunFilters) ([]*models.ReportRun, int64, error) {
	filters = filters.Normalize()

	m.mu.RLock()
	matched := make([]*models.ReportRun, 0, len(m.runs))
	for _, run := range m.runs {
		if filters.Matches(run) {
			out := *run
			matched = append(matched, &out)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if filters.SortOrder == "ASC" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filters.Offset >= len(matched) {
		return []*models.ReportRun{}, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filters.Offset:end], total, nil
}
