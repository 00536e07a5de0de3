// Package nmf implements unsupervised non-negative matrix factorization by
// multiplicative updates, plus the NMF+SVM composite method that classifies
// documents in the learned topic space.
package nmf

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/chriscorrea/topiclab/internal/nnls"

	"gonum.org/v1/gonum/mat"
)

// eps guards multiplicative-update denominators against division by zero
const eps = 1e-10

// RankError reports a requested rank larger than either data dimension.
type RankError struct {
	Rank, Rows, Cols int
}

func (e *RankError) Error() string {
	return fmt.Sprintf("invalid rank %d for %d×%d matrix", e.Rank, e.Rows, e.Cols)
}

// Config controls a factorization run.
type Config struct {
	// Rank is the number of topics.
	Rank int
	// Tol terminates iteration once the relative decrease of the
	// reconstruction error falls below it.
	Tol float64
	// MaxIter bounds the number of multiplicative updates.
	MaxIter int
}

// Factorization is the result of one run: X ≈ W·H with W (terms × rank) and
// H (rank × documents) both non-negative.
type Factorization struct {
	W, H *mat.Dense
	// Iters is the realized number of multiplicative updates.
	Iters int
	// Converged is false when MaxIter was exhausted before Tol was met.
	Converged bool
	// Trajectory holds the reconstruction error after each iteration.
	Trajectory []float64
}

// Factorize minimizes ‖X − W·H‖_F by alternating multiplicative updates from
// a random non-negative initialization drawn from rng.
func Factorize(x *mat.Dense, cfg Config, rng *rand.Rand) (*Factorization, error) {
	rows, cols := x.Dims()
	if cfg.Rank <= 0 || cfg.Rank > rows || cfg.Rank > cols {
		return nil, &RankError{Rank: cfg.Rank, Rows: rows, Cols: cols}
	}
	if cfg.MaxIter <= 0 {
		return nil, fmt.Errorf("nmf: max iterations must be positive, got %d", cfg.MaxIter)
	}

	w := randomDense(rows, cfg.Rank, rng)
	h := randomDense(cfg.Rank, cols, rng)

	f := &Factorization{W: w, H: h}
	initErr := reconstructionError(x, w, h)
	prev := initErr

	for iter := 0; iter < cfg.MaxIter; iter++ {
		// W ← W ⊙ (X·Hᵀ) ⊘ (W·H·Hᵀ)
		var num, hhT, den mat.Dense
		num.Mul(x, h.T())
		hhT.Mul(h, h.T())
		den.Mul(w, &hhT)
		scaleRatio(w, &num, &den)

		// H ← H ⊙ (Wᵀ·X) ⊘ (Wᵀ·W·H)
		var num2, wTw, den2 mat.Dense
		num2.Mul(w.T(), x)
		wTw.Mul(w.T(), w)
		den2.Mul(&wTw, h)
		scaleRatio(h, &num2, &den2)

		err := reconstructionError(x, w, h)
		f.Trajectory = append(f.Trajectory, err)
		f.Iters = iter + 1

		if initErr > 0 && (prev-err)/initErr < cfg.Tol {
			f.Converged = true
			break
		}
		prev = err
	}

	if !f.Converged {
		slog.Warn("nmf iteration budget exhausted before tolerance", "maxIter", cfg.MaxIter, "tol", cfg.Tol)
	}
	return f, nil
}

// Project solves the per-document NNLS problem min ‖W·h − x‖₂ s.t. h ≥ 0 for
// every column of xTest, yielding its representation in the fitted basis.
func (f *Factorization) Project(xTest *mat.Dense) (*mat.Dense, error) {
	return nnls.ProjectColumns(f.W, xTest)
}

// scaleRatio applies m ← m ⊙ num ⊘ (den + eps) entrywise.
func scaleRatio(m, num, den *mat.Dense) {
	md := m.RawMatrix().Data
	nd := num.RawMatrix().Data
	dd := den.RawMatrix().Data
	for i := range md {
		md[i] *= nd[i] / (dd[i] + eps)
	}
}

// reconstructionError is the Frobenius norm ‖X − W·H‖_F.
func reconstructionError(x, w, h *mat.Dense) float64 {
	var wh, diff mat.Dense
	wh.Mul(w, h)
	diff.Sub(x, &wh)
	return mat.Norm(&diff, 2)
}

// randomDense returns an r × c matrix of uniform values in (0, 1].
func randomDense(r, c int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		// avoid exact zeros so no entry is permanently stuck by the
		// multiplicative update
		data[i] = 1 - rng.Float64()
	}
	return mat.NewDense(r, c, data)
}
