package validator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUploadRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		req   UploadRequest
		rules []string
	}{
		{name: "csv", req: UploadRequest{FileName: "week1.csv", Size: 10}},
		{name: "xlsx with sheet", req: UploadRequest{FileName: "Week1.XLSX", Size: 10, Sheet: "Sheet1"}},
		{name: "bad extension", req: UploadRequest{FileName: "notes.txt", Size: 10}, rules: []string{"spreadsheet_file"}},
		{name: "empty file", req: UploadRequest{FileName: "a.csv"}, rules: []string{"gt"}},
		{name: "bad sheet", req: UploadRequest{FileName: "a.xlsx", Size: 1, Sheet: "a/b"}, rules: []string{"sheet_name"}},
		{name: "long sheet", req: UploadRequest{FileName: "a.xlsx", Size: 1, Sheet: "abcdefghijklmnopqrstuvwxyz0123456"}, rules: []string{"sheet_name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if len(tt.rules) == 0 {
				assert.NoError(t, err)
				return
			}
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			var rules []string
			for _, e := range errs {
				rules = append(rules, e.Rule)
			}
			assert.Equal(t, tt.rules, rules)
		})
	}
}

func TestValidateTrendQuery(t *testing.T) {
	v := New()

	err := v.Validate(&TrendQuery{})
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Student", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Contains(t, errs.Error(), "Student is required")

	assert.NoError(t, v.Validate(&TrendQuery{Student: "Asha"}))
}

func TestValidateRunList(t *testing.T) {
	bv := New().GetBusinessValidator()

	assert.Empty(t, bv.ValidateRunList(&RunListQuery{Kind: "paper", SortOrder: "ASC", Limit: 10}))

	errs := bv.ValidateRunList(&RunListQuery{Kind: "yearly", SortOrder: "up", Limit: 500})
	require.Len(t, errs, 3)
	assert.Equal(t, "must be one of weekly, monthly, paper", errs[0].Message)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	errs = bv.ValidateRunList(&RunListQuery{DateFrom: &from, DateTo: &to})
	require.Len(t, errs, 1)
	assert.Equal(t, "date_to", errs[0].Field)
	assert.Equal(t, "validation failed: date_to must not be before date_from", errs.Error())
}

func TestValidationErrorsMatchSentinel(t *testing.T) {
	err := New().Validate(&UploadRequest{FileName: "scores.txt", Size: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, fmt.Errorf("upload: %w", err), ErrValidationFailed)
}
