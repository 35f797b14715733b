package predict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder(t *testing.T) {
	enc := FitLabelEncoder([]string{"Poor", "Good", "Average", "Good"})
	assert.Equal(t, []string{"Average", "Good", "Poor"}, enc.Classes())

	codes, err := enc.Encode([]string{"Poor", "Good", "Average"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, codes)

	labels, err := enc.Decode(codes)
	require.NoError(t, err)
	assert.Equal(t, []string{"Poor", "Good", "Average"}, labels)

	_, err = enc.Encode([]string{"Excellent"})
	assert.Error(t, err)
	_, err = enc.Decode([]int{3})
	assert.Error(t, err)
}

func separableSet() ([][]float64, []int) {
	var x [][]float64
	var y []int
	for i := 0; i < 12; i++ {
		low := make([]float64, 40)
		high := make([]float64, 40)
		for j := range high {
			high[j] = 1
		}
		// a little noise that does not cross the class boundary
		low[i%40] = 0.2
		high[(i+7)%40] = 0.8
		x = append(x, low, high)
		y = append(y, 0, 1)
	}
	return x, y
}

func TestRandomForestLearnsSeparableClasses(t *testing.T) {
	x, y := separableSet()

	preds, err := NewRandomForest(50, 7).Predict(context.Background(), x, y)
	require.NoError(t, err)
	assert.Equal(t, y, preds)
}

func TestRandomForestIsDeterministic(t *testing.T) {
	x := [][]float64{{0, 1}, {1, 0}, {1, 1}, {0, 0}, {0.5, 0.5}, {0.2, 0.9}}
	y := []int{0, 1, 1, 0, 2, 0}

	a, err := NewRandomForest(25, 3).Predict(context.Background(), x, y)
	require.NoError(t, err)
	b, err := NewRandomForest(25, 3).Predict(context.Background(), x, y)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandomForestSingleClass(t *testing.T) {
	preds, err := NewRandomForest(5, 1).Predict(context.Background(), [][]float64{{1}, {2}, {3}}, []int{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, preds)
}

func TestRandomForestRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	rf := NewRandomForest(5, 1)

	_, err := rf.Predict(ctx, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = rf.Predict(ctx, [][]float64{{1}, {2}}, []int{0})
	assert.ErrorIs(t, err, ErrLabelMismatch)

	_, err = rf.Predict(ctx, [][]float64{{1}, {2, 3}}, []int{0, 1})
	assert.ErrorIs(t, err, ErrRaggedFeatures)

	_, err = rf.Predict(ctx, [][]float64{{1}}, []int{-1})
	assert.ErrorIs(t, err, ErrNegativeLabel)
}

func TestRandomForestHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRandomForest(5, 1).Predict(ctx, [][]float64{{1}, {2}}, []int{0, 1})
	assert.ErrorIs(t, err, context.Canceled)
}
