package predict

import (
	"fmt"
	"sort"
)

// LabelEncoder maps string labels to class indexes in sorted label order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// FitLabelEncoder learns the distinct labels.
func FitLabelEncoder(labels []string) *LabelEncoder {
	index := make(map[string]int)
	for _, l := range labels {
		index[l] = 0
	}
	classes := make([]string, 0, len(index))
	for l := range index {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	for i, l := range classes {
		index[l] = i
	}
	return &LabelEncoder{classes: classes, index: index}
}

func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *LabelEncoder) Encode(labels []string) ([]int, error) {
	codes := make([]int, len(labels))
	for i, l := range labels {
		c, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("unseen label %q", l)
		}
		codes[i] = c
	}
	return codes, nil
}

func (e *LabelEncoder) Decode(codes []int) ([]string, error) {
	labels := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(e.classes) {
			return nil, fmt.Errorf("class index %d out of range", c)
		}
		labels[i] = e.classes[c]
	}
	return labels, nil
}
