package baseline

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/chriscorrea/topiclab/internal/store"

	"gonum.org/v1/gonum/mat"
)

// Scaler standardizes features to zero mean and unit variance per term.
// Statistics are fit once on training data and applied unchanged to any
// later matrix.
type Scaler struct {
	mean []float64
	std  []float64
}

// FitScaler computes per-term (row) mean and standard deviation over the
// documents of a terms × documents matrix. Constant terms get a standard
// deviation of 1 so they scale to zero rather than dividing by zero.
func FitScaler(x *mat.Dense) *Scaler {
	terms, docs := x.Dims()
	s := &Scaler{
		mean: make([]float64, terms),
		std:  make([]float64, terms),
	}
	for i := 0; i < terms; i++ {
		sum := 0.0
		for j := 0; j < docs; j++ {
			sum += x.At(i, j)
		}
		s.mean[i] = sum / float64(docs)

		ss := 0.0
		for j := 0; j < docs; j++ {
			d := x.At(i, j) - s.mean[i]
			ss += d * d
		}
		s.std[i] = math.Sqrt(ss / float64(docs))
		if s.std[i] == 0 {
			s.std[i] = 1
		}
	}
	return s
}

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x *mat.Dense) *mat.Dense {
	terms, docs := x.Dims()
	out := mat.NewDense(terms, docs, nil)
	for i := 0; i < terms; i++ {
		for j := 0; j < docs; j++ {
			out.Set(i, j, (x.At(i, j)-s.mean[i])/s.std[i])
		}
	}
	return out
}

// SVMConfig controls the stochastic hinge-loss trainer.
type SVMConfig struct {
	// Epochs is the number of passes over the training documents.
	Epochs int
	// Alpha is the L2 regularization strength.
	Alpha float64
	// Eta0 is the initial learning rate; the effective rate decays as
	// eta0 / (1 + alpha·eta0·t).
	Eta0 float64
	// Tol stops training early once the relative improvement of the
	// epoch objective falls below it. Zero disables early stopping.
	Tol float64
}

// DefaultSVMConfig mirrors the defaults used by the standalone SVM baseline.
func DefaultSVMConfig() SVMConfig {
	return SVMConfig{Epochs: 20, Alpha: 1e-4, Eta0: 0.1, Tol: 1e-3}
}

// LinearSVM is a one-vs-rest linear classifier trained with hinge loss.
type LinearSVM struct {
	weights *mat.Dense // classes × terms
	bias    []float64
	classes int
}

// Coef returns the classes × terms weight matrix.
func (svm *LinearSVM) Coef() *mat.Dense { return svm.weights }

// FitLinearSVM trains a one-vs-rest hinge-loss classifier by stochastic
// gradient descent on a terms × documents matrix with 1-indexed labels.
// Document order is reshuffled every epoch using rng; repeated calls with
// different generators are expected to diverge, which is the point of the
// repeated-trial design.
func FitLinearSVM(x *mat.Dense, labels []int, classes int, cfg SVMConfig, rng *rand.Rand) *LinearSVM {
	terms, docs := x.Dims()
	svm := &LinearSVM{
		weights: mat.NewDense(classes, terms, nil),
		bias:    make([]float64, classes),
		classes: classes,
	}

	col := make([]float64, terms)
	t := 1
	prevObj := math.Inf(1)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for _, j := range rng.Perm(docs) {
			mat.Col(col, j, x)
			eta := cfg.Eta0 / (1 + cfg.Alpha*cfg.Eta0*float64(t))
			t++

			for c := 0; c < classes; c++ {
				y := -1.0
				if labels[j] == c+1 {
					y = 1.0
				}
				score := svm.bias[c]
				for i := 0; i < terms; i++ {
					score += svm.weights.At(c, i) * col[i]
				}

				// w ← (1 − eta·alpha)·w, plus the hinge subgradient when the
				// margin is violated
				shrink := 1 - eta*cfg.Alpha
				if y*score < 1 {
					for i := 0; i < terms; i++ {
						svm.weights.Set(c, i, svm.weights.At(c, i)*shrink+eta*y*col[i])
					}
					svm.bias[c] += eta * y
				} else {
					for i := 0; i < terms; i++ {
						svm.weights.Set(c, i, svm.weights.At(c, i)*shrink)
					}
				}
			}
		}

		if cfg.Tol > 0 {
			obj := svm.objective(x, labels, cfg.Alpha)
			if prevObj-obj < cfg.Tol*math.Max(prevObj, 1) {
				slog.Debug("svm converged early", "epoch", epoch, "objective", obj)
				break
			}
			prevObj = obj
		}
	}
	return svm
}

// objective is the regularized mean hinge loss over all classes.
func (svm *LinearSVM) objective(x *mat.Dense, labels []int, alpha float64) float64 {
	terms, docs := x.Dims()
	col := make([]float64, terms)
	loss := 0.0
	for j := 0; j < docs; j++ {
		mat.Col(col, j, x)
		for c := 0; c < svm.classes; c++ {
			y := -1.0
			if labels[j] == c+1 {
				y = 1.0
			}
			score := svm.bias[c]
			for i := 0; i < terms; i++ {
				score += svm.weights.At(c, i) * col[i]
			}
			if m := 1 - y*score; m > 0 {
				loss += m
			}
		}
	}
	reg := 0.0
	for _, w := range svm.weights.RawMatrix().Data {
		reg += w * w
	}
	return loss/float64(docs) + 0.5*alpha*reg
}

// Predict returns 1-indexed class labels for each column of x by taking the
// highest one-vs-rest score.
func (svm *LinearSVM) Predict(x *mat.Dense) []int {
	terms, docs := x.Dims()
	col := make([]float64, terms)
	pred := make([]int, docs)
	for j := 0; j < docs; j++ {
		mat.Col(col, j, x)
		best, bestScore := 0, math.Inf(-1)
		for c := 0; c < svm.classes; c++ {
			score := svm.bias[c]
			for i := 0; i < terms; i++ {
				score += svm.weights.At(c, i) * col[i]
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		pred[j] = best + 1
	}
	return pred
}

// EvaluateLinearSVM standardizes the full-train features, trains the SVM on
// them, applies the same scaling to the test features, and returns the test
// accuracy and predictions.
func EvaluateLinearSVM(st *store.Store, cfg SVMConfig, rng *rand.Rand) (float64, []int) {
	slog.Debug("running linear svm")

	scaler := FitScaler(st.Features(store.FullTrain))
	svm := FitLinearSVM(scaler.Transform(st.Features(store.FullTrain)), st.Labels(store.FullTrain), st.Classes(), cfg, rng)

	pred := svm.Predict(scaler.Transform(st.Features(store.Test)))
	acc := Accuracy(pred, st.Labels(store.Test))
	slog.Debug("linear svm evaluated", "accuracy", acc)
	return acc, pred
}
