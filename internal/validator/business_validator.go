package validator

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
)

// Worksheet names are limited to 31 characters by the xlsx format
const maxSheetNameLength = 31

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRunList checks the run listing query, including the date range
func (bv *BusinessValidator) ValidateRunList(req *RunListQuery) ValidationErrors {
	var errors ValidationErrors

	// Basic struct validation
	errors = append(errors, bv.Validate(req)...)

	if req.DateFrom != nil && req.DateTo != nil && req.DateTo.Before(*req.DateFrom) {
		errors = append(errors, ValidationError{
			Field:   "date_to",
			Message: "must not be before date_from",
			Value:   req.DateTo,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("report_kind", func(fl validator.FieldLevel) bool {
		switch models.ReportKind(fl.Field().String()) {
		case models.ReportWeekly, models.ReportMonthly, models.ReportPaper:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("sort_order", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "asc", "desc":
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("sheet_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if strings.TrimSpace(name) == "" || len([]rune(name)) > maxSheetNameLength {
			return false
		}
		return !strings.ContainsAny(name, `[]:*?/\`)
	})

	bv.validate.RegisterValidation("spreadsheet_file", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(filepath.Ext(fl.Field().String())) {
		case ".csv", ".xlsx", ".xlsm":
			return true
		}
		return false
	})
}
