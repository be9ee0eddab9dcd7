// backend-go/internal/forecast/scaler.go
package forecast

import (
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature vectors to zero mean and unit variance
// using statistics fit once at train time. Inference must reuse the
// stored statistics, never refit them.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and standard deviation over the
// training matrix. Constant columns get std 1 so they pass through
// centered instead of dividing by zero.
func FitScaler(features [][]float64) *Scaler {
	if len(features) == 0 {
		return &Scaler{}
	}

	cols := len(features[0])
	s := &Scaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}

	column := make([]float64, len(features))
	for c := 0; c < cols; c++ {
		for r := range features {
			column[r] = features[r][c]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if std == 0 || std != std {
			std = 1
		}
		s.Mean[c] = mean
		s.Std[c] = std
	}
	return s
}

// Transform standardizes a single feature vector.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out
}

// TransformAll standardizes every row of a matrix.
func (s *Scaler) TransformAll(features [][]float64) [][]float64 {
	out := make([][]float64, len(features))
	for i, row := range features {
		out[i] = s.Transform(row)
	}
	return out
}
