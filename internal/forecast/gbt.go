// backend-go/internal/forecast/gbt.go
package forecast

import (
	"math"
	"math/rand"
	"sort"
)

// GBTParams are the gradient-boosted tree hyperparameters. The values
// are a design choice, not semantically load-bearing, but they are fixed
// so that training the same matrix twice yields the same model.
type GBTParams struct {
	Trees        int     `json:"trees"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	Subsample    float64 `json:"subsample"`
	ColSample    float64 `json:"col_sample"`
	Seed         int64   `json:"seed"`
}

// DefaultGBTParams returns the documented training configuration:
// 400 trees, depth 5, learning rate 0.05, 0.8 row and column subsampling,
// squared-error objective, seed 42.
func DefaultGBTParams() GBTParams {
	return GBTParams{
		Trees:        400,
		MaxDepth:     5,
		LearningRate: 0.05,
		Subsample:    0.8,
		ColSample:    0.8,
		Seed:         42,
	}
}

// treeNode is one node of a regression tree. Internal nodes split on
// Feature < Threshold; leaves carry the residual mean.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (n *treeNode) predict(row []float64) float64 {
	node := n
	for !node.Leaf {
		if row[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// GBTModel is a gradient-boosted ensemble of regression trees fit to the
// squared-error objective. Prediction is the base value plus the scaled
// sum of every tree's leaf value.
type GBTModel struct {
	Base         float64     `json:"base"`
	LearningRate float64     `json:"learning_rate"`
	Trees        []*treeNode `json:"trees"`
}

// Predict scores a single standardized feature vector.
func (m *GBTModel) Predict(row []float64) float64 {
	yhat := m.Base
	for _, t := range m.Trees {
		yhat += m.LearningRate * t.predict(row)
	}
	return yhat
}

const minLeafSize = 2

// TrainGBT fits a boosted ensemble on the (already standardized) feature
// matrix. Each round fits one tree to the current residuals on a random
// row subsample with a random feature subset, then shrinks its
// contribution by the learning rate. Deterministic for a fixed seed.
func TrainGBT(features [][]float64, targets []float64, params GBTParams) *GBTModel {
	n := len(features)
	model := &GBTModel{LearningRate: params.LearningRate}
	if n == 0 {
		return model
	}

	sum := 0.0
	for _, y := range targets {
		sum += y
	}
	model.Base = sum / float64(n)

	rng := rand.New(rand.NewSource(params.Seed))
	dims := len(features[0])

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = model.Base
	}

	residuals := make([]float64, n)
	for t := 0; t < params.Trees; t++ {
		for i := range residuals {
			residuals[i] = targets[i] - pred[i]
		}

		rows := sampleIndices(rng, n, params.Subsample)
		cols := sampleIndices(rng, dims, params.ColSample)

		tree := buildTree(features, residuals, rows, cols, params.MaxDepth)
		model.Trees = append(model.Trees, tree)

		for i := range pred {
			pred[i] += params.LearningRate * tree.predict(features[i])
		}
	}

	return model
}

// sampleIndices draws a fraction of [0,n) without replacement, keeping
// at least one index.
func sampleIndices(rng *rand.Rand, n int, fraction float64) []int {
	k := int(math.Round(fraction * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	perm := rng.Perm(n)
	idx := append([]int(nil), perm[:k]...)
	sort.Ints(idx)
	return idx
}

func buildTree(features [][]float64, residuals []float64, rows, cols []int, depth int) *treeNode {
	if depth <= 0 || len(rows) < 2*minLeafSize {
		return &treeNode{Leaf: true, Value: meanAt(residuals, rows)}
	}

	feature, threshold, ok := bestSplit(features, residuals, rows, cols)
	if !ok {
		return &treeNode{Leaf: true, Value: meanAt(residuals, rows)}
	}

	var left, right []int
	for _, r := range rows {
		if features[r][feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < minLeafSize || len(right) < minLeafSize {
		return &treeNode{Leaf: true, Value: meanAt(residuals, rows)}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(features, residuals, left, cols, depth-1),
		Right:     buildTree(features, residuals, right, cols, depth-1),
	}
}

// bestSplit scans the allowed features for the threshold minimizing the
// total squared error of the two children. Thresholds are midpoints
// between adjacent distinct values.
func bestSplit(features [][]float64, residuals []float64, rows, cols []int) (feature int, threshold float64, ok bool) {
	type pair struct {
		v float64
		y float64
	}

	bestGain := 0.0

	total := 0.0
	totalSq := 0.0
	for _, r := range rows {
		total += residuals[r]
		totalSq += residuals[r] * residuals[r]
	}
	n := float64(len(rows))
	parentSSE := totalSq - total*total/n

	pairs := make([]pair, len(rows))
	for _, c := range cols {
		for i, r := range rows {
			pairs[i] = pair{v: features[r][c], y: residuals[r]}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })

		leftSum, leftSq := 0.0, 0.0
		for i := 0; i < len(pairs)-1; i++ {
			leftSum += pairs[i].y
			leftSq += pairs[i].y * pairs[i].y

			if pairs[i].v == pairs[i+1].v {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			if nl < minLeafSize || nr < minLeafSize {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			gain := parentSSE - sse
			if gain > bestGain {
				bestGain = gain
				feature = c
				threshold = (pairs[i].v + pairs[i+1].v) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

func meanAt(values []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}
