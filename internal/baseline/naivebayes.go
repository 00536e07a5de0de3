// Package baseline implements the two non-factorization classifiers that the
// factorization methods are compared against: a multinomial Naive Bayes
// classifier and a standardized linear SVM trained by stochastic gradient
// descent. Both operate directly on the TF-IDF feature matrices.
package baseline

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chriscorrea/topiclab/internal/store"

	"gonum.org/v1/gonum/mat"
)

// NaiveBayes is a fitted multinomial event-count model. Feature values are
// treated as (fractional) event counts, which matches applying a multinomial
// model to TF-IDF weights.
type NaiveBayes struct {
	classLogPrior  []float64
	featureLogProb *mat.Dense // classes × terms
	classes        int
}

// FitNaiveBayes fits a multinomial Naive Bayes model with Laplace smoothing
// (alpha = 1) on a terms × documents matrix and 1-indexed labels. The fit is
// deterministic: identical inputs always produce the identical model.
func FitNaiveBayes(x *mat.Dense, labels []int, classes int) (*NaiveBayes, error) {
	terms, docs := x.Dims()
	if len(labels) != docs {
		return nil, &store.MismatchError{Reason: fmt.Sprintf("%d documents but %d labels", docs, len(labels))}
	}

	classDocs := make([]int, classes)
	counts := mat.NewDense(classes, terms, nil)
	for j, y := range labels {
		if y < 1 || y > classes {
			return nil, &store.MismatchError{Reason: fmt.Sprintf("label %d out of range [1, %d]", y, classes)}
		}
		classDocs[y-1]++
		for i := 0; i < terms; i++ {
			counts.Set(y-1, i, counts.At(y-1, i)+x.At(i, j))
		}
	}

	nb := &NaiveBayes{
		classLogPrior:  make([]float64, classes),
		featureLogProb: mat.NewDense(classes, terms, nil),
		classes:        classes,
	}
	for c := 0; c < classes; c++ {
		// a class absent from training keeps a -Inf log prior and is never predicted
		nb.classLogPrior[c] = math.Log(float64(classDocs[c]) / float64(docs))

		total := 0.0
		for i := 0; i < terms; i++ {
			total += counts.At(c, i) + 1 // Laplace smoothing
		}
		for i := 0; i < terms; i++ {
			nb.featureLogProb.Set(c, i, math.Log((counts.At(c, i)+1)/total))
		}
	}
	return nb, nil
}

// Predict returns 1-indexed class labels for each column of x.
func (nb *NaiveBayes) Predict(x *mat.Dense) []int {
	terms, docs := x.Dims()
	pred := make([]int, docs)
	for j := 0; j < docs; j++ {
		best, bestScore := 0, math.Inf(-1)
		for c := 0; c < nb.classes; c++ {
			score := nb.classLogPrior[c]
			for i := 0; i < terms; i++ {
				if v := x.At(i, j); v != 0 {
					score += v * nb.featureLogProb.At(c, i)
				}
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		pred[j] = best + 1
	}
	return pred
}

// EvaluateNaiveBayes fits on the full-train split, predicts the test split,
// and returns the test accuracy alongside the predicted labels. It fails
// with a MismatchError if a class present in the test labels never appears
// in the full-train split.
func EvaluateNaiveBayes(st *store.Store) (float64, []int, error) {
	slog.Debug("running multinomial naive bayes")

	// every class observed in the test split must have training support
	seen := make(map[int]bool)
	for _, y := range st.Labels(store.FullTrain) {
		seen[y] = true
	}
	for _, y := range st.Labels(store.Test) {
		if !seen[y] {
			return 0, nil, &store.MismatchError{Reason: fmt.Sprintf("test class %d never appears in the full-train split", y)}
		}
	}

	nb, err := FitNaiveBayes(st.Features(store.FullTrain), st.Labels(store.FullTrain), st.Classes())
	if err != nil {
		return 0, nil, err
	}

	pred := nb.Predict(st.Features(store.Test))
	acc := Accuracy(pred, st.Labels(store.Test))
	slog.Debug("naive bayes evaluated", "accuracy", acc)
	return acc, pred, nil
}

// Accuracy returns the fraction of predictions matching the true labels.
func Accuracy(pred, truth []int) float64 {
	if len(pred) == 0 || len(pred) != len(truth) {
		return 0
	}
	hits := 0
	for i := range pred {
		if pred[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}
