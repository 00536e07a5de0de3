package trial

import (
	"context"
	"math/rand"
	"testing"

	"github.com/chriscorrea/topiclab/internal/checkpoint"
	"github.com/chriscorrea/topiclab/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTestStore builds a small two-class corpus with block-structured
// features, so every method has signal to separate the classes.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	const terms = 10
	rng := rand.New(rand.NewSource(42))

	build := func(docs int) (*mat.Dense, []int) {
		x := mat.NewDense(terms, docs, nil)
		labels := make([]int, docs)
		for j := 0; j < docs; j++ {
			class := j % 2
			labels[j] = class + 1
			for i := 0; i < terms; i++ {
				v := 0.05 * rng.Float64()
				if (class == 0 && i < terms/2) || (class == 1 && i >= terms/2) {
					v += 1
				}
				x.Set(i, j, v)
			}
		}
		return x, labels
	}

	train, trainLabels := build(12)
	val, valLabels := build(6)
	test, testLabels := build(8)

	full := mat.NewDense(terms, 12+6, nil)
	full.Slice(0, terms, 0, 12).(*mat.Dense).Copy(train)
	full.Slice(0, terms, 12, 18).(*mat.Dense).Copy(val)
	fullLabels := append(append([]int(nil), trainLabels...), valLabels...)

	st, err := store.New(
		map[store.Split]*mat.Dense{
			store.Train:      train,
			store.Validation: val,
			store.Test:       test,
			store.FullTrain:  full,
		},
		map[store.Split][]int{
			store.Train:      trainLabels,
			store.Validation: valLabels,
			store.Test:       testLabels,
			store.FullTrain:  fullLabels,
		},
		[]string{"alpha", "beta"}, nil)
	require.NoError(t, err)
	return st
}

func TestRunnerRejectsBadTrialCount(t *testing.T) {
	_, err := NewRunner(newTestStore(t), Config{Trials: 0, CheckpointDir: t.TempDir()})
	require.Error(t, err)
}

func TestRunnerCompletesAllMethods(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	cfg := Config{
		Rank:          2,
		MaxIter:       30,
		Trials:        3,
		SSNMFTol:      [4]float64{1e-4, 1e-4, 1e-4, 1e-4},
		Lambda:        [4]float64{1, 1, 1, 1},
		NMFTol:        1e-4,
		CheckpointDir: dir,
		Seed:          7,
	}

	r, err := NewRunner(st, cfg)
	require.NoError(t, err)

	coll, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, coll.Results[NB], 1, "naive bayes runs once")
	for _, m := range FactorizationMethods() {
		assert.Len(t, coll.Results[m], cfg.Trials, "%s should run once per trial", m)
	}
	assert.Len(t, coll.Results[SVM], cfg.Trials)

	for _, m := range Methods() {
		for i, res := range coll.Results[m] {
			assert.GreaterOrEqual(t, res.Accuracy, 0.0, "%s trial %d", m, i)
			assert.LessOrEqual(t, res.Accuracy, 1.0, "%s trial %d", m, i)
		}
	}
}

func TestRunnerCheckpointsEveryTrial(t *testing.T) {
	st := newTestStore(t)
	dir := t.TempDir()

	cfg := Config{
		Rank:          2,
		MaxIter:       20,
		Trials:        3,
		SSNMFTol:      [4]float64{1e-3, 1e-3, 1e-3, 1e-3},
		Lambda:        [4]float64{1, 1, 1, 1},
		NMFTol:        1e-3,
		CheckpointDir: dir,
		Seed:          11,
	}

	r, err := NewRunner(st, cfg)
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	require.NoError(t, err)

	w, err := checkpoint.NewWriter(dir)
	require.NoError(t, err)
	rec, err := w.ReadResults()
	require.NoError(t, err)

	assert.Len(t, rec.Accuracy["Model3"], cfg.Trials)
	assert.Len(t, rec.Dictionary["Model3"], cfg.Trials)
	assert.Len(t, rec.Predictions["SVM"], cfg.Trials)
	assert.Len(t, rec.Accuracy["NB"], 1)
	assert.Empty(t, rec.Dictionary["NB"], "baselines carry no factor matrices")
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	st := newTestStore(t)

	r, err := NewRunner(st, Config{
		Rank:          2,
		MaxIter:       20,
		Trials:        5,
		SSNMFTol:      [4]float64{1e-3, 1e-3, 1e-3, 1e-3},
		Lambda:        [4]float64{1, 1, 1, 1},
		NMFTol:        1e-3,
		CheckpointDir: t.TempDir(),
		Seed:          3,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coll, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, coll.Results[Model3], 1, "the in-flight trial completes before cancellation takes effect")
}
