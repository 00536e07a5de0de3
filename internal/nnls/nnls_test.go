package nnls

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolveRecoversExactCombination(t *testing.T) {
	// b is an exact non-negative combination of the columns of A, so the
	// solver must recover the coefficients
	a := mat.NewDense(4, 2, []float64{
		1, 0,
		0.5, 1,
		0, 2,
		0.25, 0.5,
	})
	want := []float64{0.5, 1.2}

	b := make([]float64, 4)
	for i := 0; i < 4; i++ {
		b[i] = a.At(i, 0)*want[0] + a.At(i, 1)*want[1]
	}

	got, err := Solve(a, b)
	if err != nil {
		t.Fatalf("Solve() unexpected error: %v", err)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-8 {
			t.Errorf("Solve() x[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestSolveClampsNegativeSolution(t *testing.T) {
	// the unconstrained solution is negative, so the constrained solution
	// must be exactly zero
	a := mat.NewDense(2, 1, []float64{1, 0})
	b := []float64{-1, 0}

	got, err := Solve(a, b)
	if err != nil {
		t.Fatalf("Solve() unexpected error: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("Solve() x[0] = %g, want 0", got[0])
	}
}

func TestSolveDimensionMismatch(t *testing.T) {
	a := mat.NewDense(3, 2, nil)
	if _, err := Solve(a, []float64{1, 2}); err == nil {
		t.Error("Solve() expected dimension error, got nil")
	}
}

func TestSolveNonNegativity(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		2, 1, 0,
		1, 3, 1,
		0, 1, 2,
	})
	b := []float64{1, -2, 3}

	got, err := Solve(a, b)
	if err != nil {
		t.Fatalf("Solve() unexpected error: %v", err)
	}
	for i, v := range got {
		if v < 0 {
			t.Errorf("Solve() x[%d] = %g, want ≥ 0", i, v)
		}
	}
}

func TestProjectColumns(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	// two documents: pure column 0 and an equal mix
	x := mat.NewDense(3, 2, []float64{
		2, 1,
		0, 1,
		2, 2,
	})

	s, err := ProjectColumns(a, x)
	if err != nil {
		t.Fatalf("ProjectColumns() unexpected error: %v", err)
	}

	rank, docs := s.Dims()
	if rank != 2 || docs != 2 {
		t.Fatalf("ProjectColumns() dims = %d×%d, want 2×2", rank, docs)
	}

	want := [][]float64{{2, 0}, {1, 1}}
	for j, col := range want {
		for i, v := range col {
			if math.Abs(s.At(i, j)-v) > 1e-8 {
				t.Errorf("projection[%d][%d] = %g, want %g", i, j, s.At(i, j), v)
			}
		}
	}
}
