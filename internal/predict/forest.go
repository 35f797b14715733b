package predict

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

const (
	DefaultTrees = 100
	DefaultSeed  = 42
)

// RandomForest is a bagged ensemble of CART classification trees split on
// gini impurity, considering sqrt(features) candidates per split.
type RandomForest struct {
	Trees int
	// MaxDepth of 0 grows trees until leaves are pure.
	MaxDepth int
	Seed     int64
}

func NewRandomForest(trees int, seed int64) *RandomForest {
	if trees <= 0 {
		trees = DefaultTrees
	}
	return &RandomForest{Trees: trees, Seed: seed}
}

// Predict fits the forest on features/labels and predicts the same rows.
func (f *RandomForest) Predict(ctx context.Context, features [][]float64, labels []int) ([]int, error) {
	width, classes, err := validateTrainingSet(features, labels)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(f.Seed))
	maxFeatures := int(math.Sqrt(float64(width)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	votes := make([][]int, len(features))
	for i := range votes {
		votes[i] = make([]int, classes)
	}

	trees := f.Trees
	if trees <= 0 {
		trees = DefaultTrees
	}
	for t := 0; t < trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := &treeBuilder{
			x:           features,
			y:           labels,
			width:       width,
			classes:     classes,
			maxFeatures: maxFeatures,
			maxDepth:    f.MaxDepth,
			rng:         rng,
		}
		root := b.grow(bootstrap(rng, len(features)), 0)
		for i, row := range features {
			votes[i][root.predict(row)]++
		}
	}

	preds := make([]int, len(features))
	for i, v := range votes {
		preds[i] = argmax(v)
	}
	return preds, nil
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

type node struct {
	leaf      bool
	class     int
	feature   int
	threshold float64
	left      *node
	right     *node
}

func (n *node) predict(row []float64) int {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	width       int
	classes     int
	maxFeatures int
	maxDepth    int
	rng         *rand.Rand
}

func (b *treeBuilder) grow(idx []int, depth int) *node {
	counts := b.count(idx)
	majority := argmax(counts)
	if counts[majority] == len(idx) || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return &node{leaf: true, class: majority}
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return &node{leaf: true, class: majority}
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
	}
}

func (b *treeBuilder) count(idx []int) []int {
	counts := make([]int, b.classes)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

// bestSplit evaluates random features until maxFeatures non-constant ones
// have been tried, keeping the lowest weighted gini.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := math.Inf(1)
	tried := 0

	sorted := make([]int, len(idx))
	for _, feature := range b.rng.Perm(b.width) {
		if tried >= b.maxFeatures {
			break
		}
		copy(sorted, idx)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feature] < b.x[sorted[j]][feature]
		})
		if b.x[sorted[0]][feature] == b.x[sorted[len(sorted)-1]][feature] {
			continue
		}
		tried++

		left := make([]int, b.classes)
		right := b.count(sorted)
		n := len(sorted)
		for k := 0; k < n-1; k++ {
			c := b.y[sorted[k]]
			left[c]++
			right[c]--

			lo, hi := b.x[sorted[k]][feature], b.x[sorted[k+1]][feature]
			if lo == hi {
				continue
			}
			nl, nr := k+1, n-k-1
			impurity := float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = feature
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

// argmax breaks ties toward the lowest class index.
func argmax(v []int) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
