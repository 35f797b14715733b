// Package predict provides the label classifier behind the monthly report.
package predict

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyTrainingSet = errors.New("training set is empty")
	ErrRaggedFeatures   = errors.New("feature rows have different lengths")
	ErrLabelMismatch    = errors.New("label count does not match feature rows")
	ErrNegativeLabel    = errors.New("labels must be non-negative class indexes")
)

// Predictor fits a model on features against integer class labels and
// returns one predicted class per feature row. Predictions are in-sample:
// the rows fitted are the rows predicted.
type Predictor interface {
	Predict(ctx context.Context, features [][]float64, labels []int) ([]int, error)
}

// validateTrainingSet returns the feature width and class count.
func validateTrainingSet(features [][]float64, labels []int) (width, classes int, err error) {
	if len(features) == 0 {
		return 0, 0, ErrEmptyTrainingSet
	}
	if len(labels) != len(features) {
		return 0, 0, fmt.Errorf("%w: %d labels for %d rows", ErrLabelMismatch, len(labels), len(features))
	}

	width = len(features[0])
	for i, row := range features {
		if len(row) != width {
			return 0, 0, fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedFeatures, i, len(row), width)
		}
	}
	for _, l := range labels {
		if l < 0 {
			return 0, 0, ErrNegativeLabel
		}
		if l+1 > classes {
			classes = l + 1
		}
	}
	return width, classes, nil
}
