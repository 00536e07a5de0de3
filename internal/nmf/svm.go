package nmf

import (
	"log/slog"
	"math/rand"

	"github.com/chriscorrea/topiclab/internal/baseline"
	"github.com/chriscorrea/topiclab/internal/store"

	"gonum.org/v1/gonum/mat"
)

// SVMResult collects everything the NMF+SVM composite produces for one trial.
type SVMResult struct {
	Accuracy  float64
	W         *mat.Dense // terms × rank dictionary
	Coef      *mat.Dense // classes × rank SVM coefficients, negatives clipped
	Predicted []int
	Iters     int
	Converged bool
	H         *mat.Dense // rank × full-train documents
	HTest     *mat.Dense // rank × test documents
}

// EvaluateWithSVM runs the NMF+SVM composite: factorize the full-train
// features, train a standardized hinge-loss classifier on the document
// representations, project each test document into the basis by NNLS, and
// classify the projections.
//
// Negative SVM coefficients are clipped to zero in the returned Coef matrix;
// the clipped copy is used only for visualization and never for
// reclassification, so reported accuracy is unaffected.
func EvaluateWithSVM(st *store.Store, cfg Config, svmCfg baseline.SVMConfig, rng *rand.Rand) (*SVMResult, error) {
	slog.Debug("running nmf+svm", "rank", cfg.Rank, "tol", cfg.Tol)

	f, err := Factorize(st.Features(store.FullTrain), cfg, rng)
	if err != nil {
		return nil, err
	}

	// H is already oriented topics × documents, the same row-feature layout
	// the scaler and SVM expect
	scaler := baseline.FitScaler(f.H)
	svm := baseline.FitLinearSVM(scaler.Transform(f.H), st.Labels(store.FullTrain), st.Classes(), svmCfg, rng)

	hTest, err := f.Project(st.Features(store.Test))
	if err != nil {
		return nil, err
	}

	pred := svm.Predict(scaler.Transform(hTest))
	acc := baseline.Accuracy(pred, st.Labels(store.Test))
	slog.Debug("nmf+svm evaluated", "accuracy", acc, "iters", f.Iters)

	coef := mat.DenseCopyOf(svm.Coef())
	data := coef.RawMatrix().Data
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}

	return &SVMResult{
		Accuracy:  acc,
		W:         f.W,
		Coef:      coef,
		Predicted: pred,
		Iters:     f.Iters,
		Converged: f.Converged,
		H:         f.H,
		HTest:     hTest,
	}, nil
}
