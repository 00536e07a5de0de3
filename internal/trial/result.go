package trial

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of one method invocation in one trial. The factor
// matrices are nil for the baseline classifiers.
type Result struct {
	Accuracy  float64
	Predicted []int
	Iters     int
	Converged bool

	A     *mat.Dense // dictionary (W for NMF)
	B     *mat.Dense // classification matrix (clipped SVM coefficients for NMF)
	S     *mat.Dense // train-time representation
	STest *mat.Dense // test-time representation
}

// Collection accumulates ordered per-trial results keyed by method. Order is
// the trial index and is significant for median lookup.
type Collection struct {
	Results map[Method][]Result
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{Results: make(map[Method][]Result)}
}

// Append records one trial result for a method.
func (c *Collection) Append(m Method, r Result) {
	c.Results[m] = append(c.Results[m], r)
}

// Accuracies returns the ordered accuracy sequence for a method.
func (c *Collection) Accuracies(m Method) []float64 {
	rs := c.Results[m]
	acc := make([]float64, len(rs))
	for i, r := range rs {
		acc[i] = r.Accuracy
	}
	return acc
}

// Summary holds the derived statistics of one method's accuracy sequence.
type Summary struct {
	Mean        float64
	Stdev       float64
	Median      float64
	MedianIndex int
}

// Summarize computes mean, sample standard deviation, median, and the
// median trial index for a method. It fails when fewer than two trials were
// recorded, since the sample standard deviation needs at least two samples.
func (c *Collection) Summarize(m Method) (Summary, error) {
	acc := c.Accuracies(m)
	if len(acc) < 2 {
		return Summary{}, fmt.Errorf("trial: %s has %d result(s), need at least 2 for a summary", m, len(acc))
	}

	sorted := append([]float64(nil), acc...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}

	return Summary{
		Mean:        stat.Mean(acc, nil),
		Stdev:       stat.StdDev(acc, nil),
		Median:      median,
		MedianIndex: MedianIndex(acc),
	}, nil
}

// MedianIndex returns the index of the trial at the middle rank position of
// the accuracy sequence: argsort(acc)[len(acc)/2]. For odd lengths this is
// the trial achieving the median accuracy; for even lengths it is the
// positional-rank element, not the interpolated statistical median, so
// callers should always pass odd trial counts.
func MedianIndex(acc []float64) int {
	sorted := append([]float64(nil), acc...)
	inds := make([]int, len(acc))
	floats.Argsort(sorted, inds)
	return inds[len(inds)/2]
}

// MeanIters returns the mean realized iteration count for a method.
func (c *Collection) MeanIters(m Method) float64 {
	rs := c.Results[m]
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Iters
	}
	return float64(sum) / float64(len(rs))
}
