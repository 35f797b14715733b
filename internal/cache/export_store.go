package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrExportNotFound is returned for unknown or expired export ids.
var ErrExportNotFound = errors.New("export not found or expired")

// Export is a generated file held for download.
type Export struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
	// ExpiresAt is filled by Load from the remaining key lifetime.
	ExpiresAt   time.Time `json:"-"`
}

// ExportStore keeps generated report files in redis for a limited time so
// they can be fetched by id after the report response.
type ExportStore struct {
	manager *CacheManager
	helper  *CacheHelper
	ttl     time.Duration
	logger  *slog.Logger
}

func NewExportStore(cm *CacheManager, ttl time.Duration, logger *slog.Logger) *ExportStore {
	if ttl <= 0 {
		ttl = ExportCacheConfig.TTL
	}
	return &ExportStore{manager: cm, helper: cm.Export, ttl: ttl, logger: logger}
}

// Available reports whether exports can be stored.
func (s *ExportStore) Available() bool {
	return s != nil && s.helper.Available()
}

// HealthCheck pings redis.
func (s *ExportStore) HealthCheck(ctx context.Context) error {
	return s.manager.HealthCheck(ctx)
}

// TTL is how long a saved export stays downloadable.
func (s *ExportStore) TTL() time.Duration {
	return s.ttl
}

// Save stores data and returns its export id.
func (s *ExportStore) Save(ctx context.Context, fileName, contentType string, data []byte) (*Export, error) {
	export := &Export{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.helper.Set(ctx, export.ID, export, s.ttl); err != nil {
		return nil, fmt.Errorf("save export: %w", err)
	}

	s.logger.DebugContext(ctx, "Export stored",
		"export_id", export.ID,
		"file_name", fileName,
		"bytes", len(data))
	return export, nil
}

// Load fetches a stored export.
func (s *ExportStore) Load(ctx context.Context, id string) (*Export, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrExportNotFound
	}

	var export Export
	if err := s.helper.Get(ctx, id, &export); err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("load export: %w", err)
	}

	if ttl, err := s.helper.TTL(ctx, id); err == nil && ttl > 0 {
		export.ExpiresAt = time.Now().UTC().Add(ttl)
	}
	return &export, nil
}

// Delete drops an export before it expires.
func (s *ExportStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrExportNotFound
	}

	exists, err := s.helper.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("delete export: %w", err)
	}
	if !exists {
		return ErrExportNotFound
	}

	if err := s.helper.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete export",
			"error", err,
			"export_id", id)
		return fmt.Errorf("delete export: %w", err)
	}
	return nil
}
