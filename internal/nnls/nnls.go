// Package nnls solves non-negative least-squares problems: min ‖A·x − b‖₂
// subject to x ≥ 0. It is used to project held-out documents into a fitted
// dictionary basis, one document column at a time.
package nnls

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// tolerance below which a gradient entry is treated as non-positive
const gradTol = 1e-12

// Solve returns the x ≥ 0 minimizing ‖A·x − b‖₂ using the Lawson–Hanson
// active-set method. A has dimensions m × n and b length m.
func Solve(a mat.Matrix, b []float64) ([]float64, error) {
	m, n := a.Dims()
	if len(b) != m {
		return nil, fmt.Errorf("nnls: A is %d×%d but b has length %d", m, n, len(b))
	}

	x := make([]float64, n)
	passive := make([]bool, n)
	bVec := mat.NewVecDense(m, b)

	// residual r = b - A·x; starts at b since x = 0
	resid := mat.NewVecDense(m, nil)
	resid.CopyVec(bVec)

	w := mat.NewVecDense(n, nil)

	// the outer loop adds at most one variable to the passive set per pass,
	// so 3n passes is a generous safety bound
	for outer := 0; outer < 3*n+10; outer++ {
		// gradient w = Aᵀ·r; the most positive entry over the active set
		// identifies the next variable to free
		w.MulVec(a.T(), resid)
		best, bestVal := -1, gradTol
		for j := 0; j < n; j++ {
			if !passive[j] && w.AtVec(j) > bestVal {
				best, bestVal = j, w.AtVec(j)
			}
		}
		if best < 0 {
			break // KKT conditions satisfied
		}
		passive[best] = true

		// inner loop: solve the unconstrained subproblem on the passive set,
		// stepping back toward feasibility whenever the solution goes negative
		for inner := 0; inner < 3*n+10; inner++ {
			z, cols, err := solvePassive(a, bVec, passive)
			if err != nil {
				return nil, err
			}

			feasible := true
			alpha := math.Inf(1)
			for i, j := range cols {
				if z[i] <= 0 {
					feasible = false
					if denom := x[j] - z[i]; denom > gradTol {
						if step := x[j] / denom; step < alpha {
							alpha = step
						}
					}
				}
			}

			if feasible {
				for j := range x {
					x[j] = 0
				}
				for i, j := range cols {
					x[j] = z[i]
				}
				break
			}

			// move toward z until the first variable hits zero, then drop
			// every zeroed variable from the passive set
			if math.IsInf(alpha, 1) {
				alpha = 0
			}
			for i, j := range cols {
				x[j] += alpha * (z[i] - x[j])
				if x[j] <= gradTol {
					x[j] = 0
					passive[j] = false
				}
			}
		}

		// refresh residual for the next gradient evaluation
		ax := mat.NewVecDense(m, nil)
		ax.MulVec(a, mat.NewVecDense(n, x))
		resid.SubVec(bVec, ax)
	}

	return x, nil
}

// solvePassive solves the unconstrained least-squares problem restricted to
// the passive columns of A, returning the solution and the column indices it
// corresponds to.
func solvePassive(a mat.Matrix, b *mat.VecDense, passive []bool) ([]float64, []int, error) {
	m, n := a.Dims()
	var cols []int
	for j := 0; j < n; j++ {
		if passive[j] {
			cols = append(cols, j)
		}
	}
	if len(cols) == 0 {
		return nil, nil, nil
	}

	sub := mat.NewDense(m, len(cols), nil)
	colBuf := make([]float64, m)
	for i, j := range cols {
		mat.Col(colBuf, j, a)
		sub.SetCol(i, colBuf)
	}

	z := mat.NewVecDense(len(cols), nil)
	if err := z.SolveVec(sub, b); err != nil {
		return nil, nil, fmt.Errorf("nnls: passive-set solve failed: %w", err)
	}
	return z.RawVector().Data, cols, nil
}

// ProjectColumns solves one NNLS problem per column of X against the
// dictionary A, returning the rank × columns representation matrix. Each
// column is independent of the others.
func ProjectColumns(a mat.Matrix, x mat.Matrix) (*mat.Dense, error) {
	m, rank := a.Dims()
	xr, docs := x.Dims()
	if xr != m {
		return nil, fmt.Errorf("nnls: dictionary has %d rows but data has %d", m, xr)
	}

	s := mat.NewDense(rank, docs, nil)
	col := make([]float64, m)
	for j := 0; j < docs; j++ {
		mat.Col(col, j, x)
		h, err := Solve(a, col)
		if err != nil {
			return nil, fmt.Errorf("nnls: column %d: %w", j, err)
		}
		s.SetCol(j, h)
	}
	return s, nil
}
