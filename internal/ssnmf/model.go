package ssnmf

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// eps guards multiplicative-update denominators and divergence logarithms
const eps = 1e-10

// Hyperparams are the knobs of one factorization run, supplied directly or
// produced by Search.
type Hyperparams struct {
	// Rank is the topic count.
	Rank int
	// Lambda weights the label-reconstruction term.
	Lambda float64
	// MaxIter bounds the number of multiplicative updates.
	MaxIter int
	// Tol terminates iteration once the relative change of the combined
	// objective falls below it.
	Tol float64
}

// Validate checks the hyperparameters before any fitting work begins.
func (hp Hyperparams) Validate() error {
	if hp.Rank <= 0 {
		return &HyperparamError{Field: "rank", Reason: fmt.Sprintf("must be positive, got %d", hp.Rank)}
	}
	if hp.Lambda < 0 {
		return &HyperparamError{Field: "lambda", Reason: fmt.Sprintf("must be non-negative, got %g", hp.Lambda)}
	}
	if hp.MaxIter <= 0 {
		return &HyperparamError{Field: "maxIter", Reason: fmt.Sprintf("must be positive, got %d", hp.MaxIter)}
	}
	if hp.Tol < 0 {
		return &HyperparamError{Field: "tol", Reason: fmt.Sprintf("must be non-negative, got %g", hp.Tol)}
	}
	return nil
}

// IterError records the objective decomposition after one iteration. Data
// and label errors are normalized by the entrywise count of the respective
// matrix.
type IterError struct {
	Objective float64
	Data      float64
	Label     float64
}

// Model is a fitted joint factorization: X ≈ A·S and Y ≈ B·S.
type Model struct {
	Variant Variant
	Hyper   Hyperparams

	A *mat.Dense // terms × rank dictionary
	B *mat.Dense // classes × rank classification matrix
	S *mat.Dense // rank × train documents representation

	// Iters is the realized iteration count.
	Iters int
	// Converged is false when MaxIter was exhausted before Tol was met;
	// the result is still usable, merely flagged.
	Converged bool
	// Trajectory holds the per-iteration error decomposition.
	Trajectory []IterError
}

// Fit initializes A, B, S with random non-negative values from rng and
// iterates the variant's multiplicative updates on a terms × documents
// feature matrix x and a classes × documents one-hot label matrix y.
//
// A, B, S remain strictly non-negative throughout; if any entry still comes
// out negative or non-finite, Fit fails with an InstabilityError rather than
// clipping.
func Fit(v Variant, x, y *mat.Dense, hp Hyperparams, rng *rand.Rand) (*Model, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	terms, docs := x.Dims()
	classes, ydocs := y.Dims()
	if docs != ydocs {
		return nil, fmt.Errorf("ssnmf: %d feature columns but %d label columns", docs, ydocs)
	}
	if hp.Rank > terms || hp.Rank > docs {
		return nil, &HyperparamError{Field: "rank", Reason: fmt.Sprintf("%d exceeds data dimensions %d×%d", hp.Rank, terms, docs)}
	}

	m := &Model{
		Variant: v,
		Hyper:   hp,
		A:       randomDense(terms, hp.Rank, rng),
		B:       randomDense(classes, hp.Rank, rng),
		S:       randomDense(hp.Rank, docs, rng),
	}

	prev := math.Inf(1)
	init := math.Inf(1)
	for iter := 0; iter < hp.MaxIter; iter++ {
		updateDictionary(m.A, x, m.S, v.frobeniusData())
		updateDictionary(m.B, y, m.S, v.frobeniusLabel())
		updateRepresentation(m, x, y)

		ie := m.errors(x, y)
		m.Trajectory = append(m.Trajectory, ie)
		m.Iters = iter + 1

		if iter == 0 {
			init = ie.Objective
		} else if math.Abs(prev-ie.Objective)/math.Max(init, eps) < hp.Tol {
			m.Converged = true
			break
		}
		prev = ie.Objective
	}

	if !m.Converged {
		slog.Warn("ssnmf iteration budget exhausted before tolerance",
			"variant", v.String(), "maxIter", hp.MaxIter, "tol", hp.Tol)
	}

	for _, chk := range []struct {
		name string
		m    *mat.Dense
	}{{"A", m.A}, {"B", m.B}, {"S", m.S}} {
		if !finiteNonNegative(chk.m) {
			return nil, &InstabilityError{Matrix: chk.name}
		}
	}
	return m, nil
}

// updateDictionary applies one multiplicative update to a dictionary matrix
// D (either A against X or B against Y) with the representation S held
// fixed. The label weight cancels out of the B update, so the same rule
// serves both terms.
func updateDictionary(d, x, s *mat.Dense, frobenius bool) {
	if frobenius {
		// D ← D ⊙ (X·Sᵀ) ⊘ (D·S·Sᵀ)
		var num, ssT, den mat.Dense
		num.Mul(x, s.T())
		ssT.Mul(s, s.T())
		den.Mul(d, &ssT)
		scaleRatio(d, &num, &den)
		return
	}

	// D ← D ⊙ ((X ⊘ D·S)·Sᵀ) ⊘ (1·Sᵀ)
	var num mat.Dense
	num.Mul(ratio(x, d, s), s.T())
	rows, rank := d.Dims()
	_, docs := s.Dims()
	rowSums := make([]float64, rank)
	for t := 0; t < rank; t++ {
		for j := 0; j < docs; j++ {
			rowSums[t] += s.At(t, j)
		}
	}
	for i := 0; i < rows; i++ {
		for t := 0; t < rank; t++ {
			d.Set(i, t, d.At(i, t)*num.At(i, t)/(rowSums[t]+eps))
		}
	}
}

// updateRepresentation applies one multiplicative update to S, accumulating
// the data-term and label-term contributions dictated by the variant.
func updateRepresentation(m *Model, x, y *mat.Dense) {
	rank, docs := m.S.Dims()
	num := mat.NewDense(rank, docs, nil)
	den := mat.NewDense(rank, docs, nil)

	if m.Variant.frobeniusData() {
		var n, aTa, d mat.Dense
		n.Mul(m.A.T(), x)
		aTa.Mul(m.A.T(), m.A)
		d.Mul(&aTa, m.S)
		num.Add(num, &n)
		den.Add(den, &d)
	} else {
		var n mat.Dense
		n.Mul(m.A.T(), ratio(x, m.A, m.S))
		num.Add(num, &n)
		addColumnSums(den, m.A, 1)
	}

	if m.Hyper.Lambda > 0 {
		if m.Variant.frobeniusLabel() {
			var n, bTb, d mat.Dense
			n.Mul(m.B.T(), y)
			bTb.Mul(m.B.T(), m.B)
			d.Mul(&bTb, m.S)
			n.Scale(m.Hyper.Lambda, &n)
			d.Scale(m.Hyper.Lambda, &d)
			num.Add(num, &n)
			den.Add(den, &d)
		} else {
			var n mat.Dense
			n.Mul(m.B.T(), ratio(y, m.B, m.S))
			n.Scale(m.Hyper.Lambda, &n)
			num.Add(num, &n)
			addColumnSums(den, m.B, m.Hyper.Lambda)
		}
	}

	scaleRatio(m.S, num, den)
}

// errors computes the normalized objective decomposition for the current
// factors.
func (m *Model) errors(x, y *mat.Dense) IterError {
	dataErr := reconstructionError(x, m.A, m.S, m.Variant.frobeniusData())
	labelErr := reconstructionError(y, m.B, m.S, m.Variant.frobeniusLabel())
	return IterError{
		Objective: dataErr + m.Hyper.Lambda*labelErr,
		Data:      dataErr,
		Label:     labelErr,
	}
}

// reconstructionError measures ‖X − D·S‖²_F or D(X‖D·S) depending on the
// norm, normalized by the entrywise count of X.
func reconstructionError(x, d, s *mat.Dense, frobenius bool) float64 {
	rows, cols := x.Dims()
	count := float64(rows * cols)

	var ds mat.Dense
	ds.Mul(d, s)

	if frobenius {
		var diff mat.Dense
		diff.Sub(x, &ds)
		n := mat.Norm(&diff, 2)
		return n * n / count
	}

	div := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := x.At(i, j)
			w := ds.At(i, j) + eps
			if v > 0 {
				div += v*math.Log(v/w) - v + w
			} else {
				div += w
			}
		}
	}
	return div / count
}

// ratio returns X ⊘ (D·S + eps).
func ratio(x, d, s *mat.Dense) *mat.Dense {
	var ds mat.Dense
	ds.Mul(d, s)
	rows, cols := ds.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(i, j)/(ds.At(i, j)+eps))
		}
	}
	return out
}

// addColumnSums adds weight·Σ_i D[i,t] to every entry of row t of dst,
// the broadcast denominator of a divergence update.
func addColumnSums(dst *mat.Dense, d *mat.Dense, weight float64) {
	rows, rank := d.Dims()
	_, docs := dst.Dims()
	for t := 0; t < rank; t++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += d.At(i, t)
		}
		sum *= weight
		for j := 0; j < docs; j++ {
			dst.Set(t, j, dst.At(t, j)+sum)
		}
	}
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

// finiteNonNegative reports whether every entry of m is finite and ≥ 0.
func finiteNonNegative(m *mat.Dense) bool {
	for _, v := range m.RawMatrix().Data {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// randomDense returns an r × c matrix of uniform values in (0, 1]; exact
// zeros are avoided so no entry is permanently stuck by the multiplicative
// update.
func randomDense(r, c int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = 1 - rng.Float64()
	}
	return mat.NewDense(r, c, data)
}
