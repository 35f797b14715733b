package validator

import "time"

// UploadRequest describes the uploaded sheet of every report endpoint
type UploadRequest struct {
	FileName string `json:"file_name" validate:"required,spreadsheet_file"`
	Size     int64  `json:"size" validate:"gt=0"`
	Sheet    string `json:"sheet" form:"sheet" validate:"omitempty,sheet_name"`
}

// MonthlyReportQuery holds the monthly report options
type MonthlyReportQuery struct {
	Predict bool   `json:"predict" form:"predict"`
	Student string `json:"student" form:"student" validate:"omitempty,max=255"`
}

// TrendQuery selects the student whose weekly trend is returned
type TrendQuery struct {
	Student string `json:"student" form:"student" validate:"required,max=255"`
}

// RunListQuery filters the run history
type RunListQuery struct {
	Kind        string     `json:"kind" form:"kind" validate:"omitempty,report_kind"`
	RequestedBy string     `json:"requested_by" form:"requested_by" validate:"omitempty,max=255"`
	DateFrom    *time.Time `json:"date_from" form:"date_from" time_format:"2006-01-02"`
	DateTo      *time.Time `json:"date_to" form:"date_to" time_format:"2006-01-02"`
	Limit       int        `json:"limit" form:"limit" validate:"omitempty,min=1,max=100"`
	Offset      int        `json:"offset" form:"offset" validate:"omitempty,min=0"`
	SortOrder   string     `json:"sort_order" form:"sort_order" validate:"omitempty,sort_order"`
}
