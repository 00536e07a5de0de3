package ssnmf

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/chriscorrea/topiclab/internal/nnls"

	"gonum.org/v1/gonum/mat"
)

// Evaluation is the held-out error decomposition of a fitted model: the
// total objective, its data and label components (normalized by entrywise
// count), and the classification accuracy.
type Evaluation struct {
	Objective float64
	Data      float64
	Label     float64
	Accuracy  float64
}

// Result bundles one full evaluation run.
type Result struct {
	Eval      Evaluation
	Model     *Model
	STest     *mat.Dense // rank × test documents
	Predicted []int      // 1-indexed
}

// Project computes the representation of held-out documents in the fitted
// dictionary basis. Frobenius-data variants solve the per-document NNLS
// problem min ‖A·s − x‖₂ s.t. s ≥ 0; divergence-data variants iterate the
// S-only multiplicative update under D(X‖A·S) with A held fixed, since NNLS
// is a Frobenius-norm solve and does not apply.
func (m *Model) Project(xTest *mat.Dense) (*mat.Dense, error) {
	if m.Variant.frobeniusData() {
		return nnls.ProjectColumns(m.A, xTest)
	}
	return m.projectDivergence(xTest)
}

// projectDivergence minimizes D(X_test‖A·S) over S ≥ 0 alone, reusing the
// model's iteration budget and tolerance.
func (m *Model) projectDivergence(xTest *mat.Dense) (*mat.Dense, error) {
	terms, docs := xTest.Dims()
	aTerms, rank := m.A.Dims()
	if terms != aTerms {
		return nil, fmt.Errorf("ssnmf: dictionary has %d terms but test data has %d", aTerms, terms)
	}

	// deterministic flat start keeps projection reproducible per trial
	s := mat.NewDense(rank, docs, nil)
	for i := 0; i < rank; i++ {
		for j := 0; j < docs; j++ {
			s.Set(i, j, 1)
		}
	}

	colA := make([]float64, rank)
	for t := 0; t < rank; t++ {
		for i := 0; i < terms; i++ {
			colA[t] += m.A.At(i, t)
		}
	}

	prev := math.Inf(1)
	init := math.Inf(1)
	for iter := 0; iter < m.Hyper.MaxIter; iter++ {
		// S ← S ⊙ (Aᵀ·(X ⊘ A·S)) ⊘ colsum(A)
		var num mat.Dense
		num.Mul(m.A.T(), ratio(xTest, m.A, s))
		for t := 0; t < rank; t++ {
			for j := 0; j < docs; j++ {
				s.Set(t, j, s.At(t, j)*num.At(t, j)/(colA[t]+eps))
			}
		}

		div := reconstructionError(xTest, m.A, s, false)
		if iter == 0 {
			init = div
		} else if math.Abs(prev-div)/math.Max(init, eps) < m.Hyper.Tol {
			break
		}
		prev = div
	}

	if !finiteNonNegative(s) {
		return nil, &InstabilityError{Matrix: "S_test"}
	}
	return s, nil
}

// Predict returns the 1-indexed argmax of B·S_test per column.
func (m *Model) Predict(sTest *mat.Dense) []int {
	var yHat mat.Dense
	yHat.Mul(m.B, sTest)
	classes, docs := yHat.Dims()

	pred := make([]int, docs)
	for j := 0; j < docs; j++ {
		best, bestVal := 0, math.Inf(-1)
		for c := 0; c < classes; c++ {
			if v := yHat.At(c, j); v > bestVal {
				best, bestVal = c, v
			}
		}
		pred[j] = best + 1
	}
	return pred
}

// Evaluate fits the variant on (x, y), projects the held-out documents, and
// computes the test-side error decomposition and classification accuracy
// against the 1-indexed true labels.
func Evaluate(v Variant, x, y, xTest, yTest *mat.Dense, testLabels []int, hp Hyperparams, rng *rand.Rand) (*Result, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("evaluating ssnmf", "variant", v.String(), "rank", hp.Rank, "lambda", hp.Lambda, "maxIter", hp.MaxIter)

	m, err := Fit(v, x, y, hp, rng)
	if err != nil {
		return nil, err
	}

	sTest, err := m.Project(xTest)
	if err != nil {
		return nil, err
	}

	pred := m.Predict(sTest)
	hits := 0
	for j, p := range pred {
		if p == testLabels[j] {
			hits++
		}
	}

	eval := Evaluation{
		Data:     reconstructionError(xTest, m.A, sTest, v.frobeniusData()),
		Label:    reconstructionError(yTest, m.B, sTest, v.frobeniusLabel()),
		Accuracy: float64(hits) / float64(len(pred)),
	}
	eval.Objective = eval.Data + hp.Lambda*eval.Label

	slog.Debug("ssnmf evaluated", "variant", v.String(), "accuracy", eval.Accuracy, "iters", m.Iters)
	return &Result{Eval: eval, Model: m, STest: sTest, Predicted: pred}, nil
}
