package trial

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/chriscorrea/topiclab/internal/baseline"
	"github.com/chriscorrea/topiclab/internal/checkpoint"
	"github.com/chriscorrea/topiclab/internal/nmf"
	"github.com/chriscorrea/topiclab/internal/ssnmf"
	"github.com/chriscorrea/topiclab/internal/store"
)

// nmfMaxIter bounds the plain NMF factorization, matching the fixed budget
// the composite method was tuned with.
const nmfMaxIter = 400

// Config holds all invocation parameters for a run.
type Config struct {
	// Rank is the shared topic count for every factorization method.
	Rank int
	// MaxIter bounds the SSNMF multiplicative updates.
	MaxIter int
	// Trials is the number of repeated trials; it should be odd so the
	// median trial index is well-defined without interpolation.
	Trials int
	// SSNMFTol holds one convergence tolerance per model variant, ordered
	// Model3..Model6.
	SSNMFTol [4]float64
	// Lambda holds one regularization weight per model variant.
	Lambda [4]float64
	// NMFTol is the plain NMF convergence tolerance.
	NMFTol float64
	// Search enables iterative local hyperparameter search on the
	// validation split before every SSNMF fit.
	Search bool
	// SearchSteps bounds the local search; zero means the default.
	SearchSteps int
	// CheckpointDir is where JSON checkpoints are written.
	CheckpointDir string
	// Seed initializes the run's random generator.
	Seed int64
	// Progress, when non-nil, receives a short status line at the start
	// of each method invocation.
	Progress func(msg string)
}

// Runner executes all methods over repeated trials, fully sequentially:
// trials run one after another, and methods within a trial run one after
// another. Each trial constructs fresh matrices, so there is no shared
// mutable state between them.
type Runner struct {
	st   *store.Store
	cfg  Config
	ckpt *checkpoint.Writer
	rng  *rand.Rand
}

// NewRunner validates the configuration, prepares the checkpoint directory,
// and persists the run parameters.
func NewRunner(st *store.Store, cfg Config) (*Runner, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trial: trial count must be positive, got %d", cfg.Trials)
	}
	if cfg.Trials%2 == 0 {
		slog.Warn("even trial count: the median trial index is positional, not the statistical median", "trials", cfg.Trials)
	}

	ckpt, err := checkpoint.NewWriter(cfg.CheckpointDir)
	if err != nil {
		return nil, err
	}
	if err := ckpt.WriteParams(checkpoint.Params{
		Rank:     cfg.Rank,
		MaxIter:  cfg.MaxIter,
		Trials:   cfg.Trials,
		SSNMFTol: cfg.SSNMFTol[:],
		Lambda:   cfg.Lambda[:],
		NMFTol:   cfg.NMFTol,
		Search:   cfg.Search,
		Seed:     cfg.Seed,
	}); err != nil {
		return nil, err
	}

	return &Runner{
		st:   st,
		cfg:  cfg,
		ckpt: ckpt,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the full analysis: Naive Bayes once (it is deterministic),
// then cfg.Trials rounds of the four SSNMF variants, NMF+SVM, and the SVM
// baseline. The collection is checkpointed after every trial, so a write
// that completes makes all prior trial data durable; ctx is consulted at
// that same boundary.
//
// A method failure aborts only that invocation: the error is logged and the
// run continues with the next method.
func (r *Runner) Run(ctx context.Context) (*Collection, error) {
	coll := NewCollection()

	r.progress("running naive bayes")
	if acc, pred, err := baseline.EvaluateNaiveBayes(r.st); err != nil {
		slog.Error("naive bayes failed", "err", err)
	} else {
		coll.Append(NB, Result{Accuracy: acc, Predicted: pred, Converged: true})
	}

	for j := 0; j < r.cfg.Trials; j++ {
		slog.Debug("starting trial", "trial", j)

		for _, m := range []Method{Model3, Model4, Model5, Model6} {
			r.progress(fmt.Sprintf("trial %d/%d: %s", j+1, r.cfg.Trials, m))
			if res, err := r.runSSNMF(m); err != nil {
				slog.Error("ssnmf method failed", "method", m.String(), "trial", j, "err", err)
			} else {
				coll.Append(m, res)
			}
		}

		r.progress(fmt.Sprintf("trial %d/%d: NMF+SVM", j+1, r.cfg.Trials))
		if res, err := r.runNMF(); err != nil {
			slog.Error("nmf+svm failed", "trial", j, "err", err)
		} else {
			coll.Append(NMF, res)
		}

		r.progress(fmt.Sprintf("trial %d/%d: SVM", j+1, r.cfg.Trials))
		acc, pred := baseline.EvaluateLinearSVM(r.st, baseline.DefaultSVMConfig(), r.rng)
		coll.Append(SVM, Result{Accuracy: acc, Predicted: pred, Converged: true})

		if err := r.ckpt.WriteResults(record(coll)); err != nil {
			return coll, fmt.Errorf("trial %d checkpoint failed: %w", j, err)
		}
		if err := ctx.Err(); err != nil {
			return coll, err
		}
	}

	if err := r.ckpt.WriteMedian(coll.MedianIndices()); err != nil {
		return coll, err
	}
	return coll, nil
}

// runSSNMF evaluates one model variant: optional hyperparameter search on
// the train/validation pair, then a final fit on full-train scored against
// the test split.
func (r *Runner) runSSNMF(m Method) (Result, error) {
	v, _ := m.Variant()
	idx, _ := m.variantIndex()

	hp := ssnmf.Hyperparams{
		Rank:    r.cfg.Rank,
		Lambda:  r.cfg.Lambda[idx],
		MaxIter: r.cfg.MaxIter,
		Tol:     r.cfg.SSNMFTol[idx],
	}

	if r.cfg.Search {
		searchCfg := ssnmf.DefaultSearchConfig()
		if r.cfg.SearchSteps > 0 {
			searchCfg.MaxSteps = r.cfg.SearchSteps
		}
		found, err := ssnmf.Search(v,
			r.st.Features(store.Train), r.st.OneHot(store.Train),
			r.st.Features(store.Validation), r.st.OneHot(store.Validation),
			r.st.Labels(store.Validation), hp, searchCfg, r.rng)
		if err != nil {
			return Result{}, err
		}
		hp = found
	}

	res, err := ssnmf.Evaluate(v,
		r.st.Features(store.FullTrain), r.st.OneHot(store.FullTrain),
		r.st.Features(store.Test), r.st.OneHot(store.Test),
		r.st.Labels(store.Test), hp, r.rng)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Accuracy:  res.Eval.Accuracy,
		Predicted: res.Predicted,
		Iters:     res.Model.Iters,
		Converged: res.Model.Converged,
		A:         res.Model.A,
		B:         res.Model.B,
		S:         res.Model.S,
		STest:     res.STest,
	}, nil
}

// runNMF evaluates the NMF+SVM composite; the inner SVM trains with a
// tighter tolerance than the standalone baseline.
func (r *Runner) runNMF() (Result, error) {
	svmCfg := baseline.DefaultSVMConfig()
	svmCfg.Tol = 1e-5

	res, err := nmf.EvaluateWithSVM(r.st, nmf.Config{
		Rank:    r.cfg.Rank,
		Tol:     r.cfg.NMFTol,
		MaxIter: nmfMaxIter,
	}, svmCfg, r.rng)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Accuracy:  res.Accuracy,
		Predicted: res.Predicted,
		Iters:     res.Iters,
		Converged: res.Converged,
		A:         res.W,
		B:         res.Coef,
		S:         res.H,
		STest:     res.HTest,
	}, nil
}

// MedianIndices returns the median trial index for every method with
// repeated trials; Naive Bayes is excluded since it runs once.
func (c *Collection) MedianIndices() map[string]int {
	median := make(map[string]int)
	for _, m := range Methods() {
		if m == NB {
			continue
		}
		if acc := c.Accuracies(m); len(acc) > 0 {
			median[m.String()] = MedianIndex(acc)
		}
	}
	return median
}

// record converts the collection into its serialized checkpoint form.
func record(c *Collection) *checkpoint.Record {
	rec := checkpoint.NewRecord()
	for _, m := range Methods() {
		name := m.String()
		for _, res := range c.Results[m] {
			rec.Accuracy[name] = append(rec.Accuracy[name], res.Accuracy)
			rec.Predictions[name] = append(rec.Predictions[name], res.Predicted)
			if res.A == nil {
				continue
			}
			rec.Dictionary[name] = append(rec.Dictionary[name], checkpoint.FromDense(res.A))
			rec.Classification[name] = append(rec.Classification[name], checkpoint.FromDense(res.B))
			rec.Representation[name] = append(rec.Representation[name], checkpoint.FromDense(res.S))
			rec.TestRepresentation[name] = append(rec.TestRepresentation[name], checkpoint.FromDense(res.STest))
			rec.Iterations[name] = append(rec.Iterations[name], res.Iters)
		}
	}
	return rec
}

func (r *Runner) progress(msg string) {
	if r.cfg.Progress != nil {
		r.cfg.Progress(msg)
	}
}
