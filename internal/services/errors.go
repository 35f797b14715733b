package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/bt-analytics-service/internal/analytics"
	"github.com/SAP-F-2025/bt-analytics-service/internal/cache"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

// Common service errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = validator.ErrValidationFailed
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	ErrExportUnavailable = errors.New("export store is not configured")
)

// wrapServiceError tags errors from the lower layers with the service error
// the handlers map to a status code.
func wrapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case sheet.IsInputError(err):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, analytics.ErrStudentNotFound),
		errors.Is(err, repositories.ErrRunNotFound),
		errors.Is(err, cache.ErrExportNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return err
	}
}
