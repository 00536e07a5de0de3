package nmf

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// lowRankMatrix builds a 10×8 matrix with exact rank-2 structure.
func lowRankMatrix(rng *rand.Rand) *mat.Dense {
	w := mat.NewDense(10, 2, nil)
	h := mat.NewDense(2, 8, nil)
	for i := 0; i < 10; i++ {
		w.Set(i, 0, rng.Float64())
		w.Set(i, 1, rng.Float64())
	}
	for j := 0; j < 8; j++ {
		h.Set(0, j, rng.Float64())
		h.Set(1, j, rng.Float64())
	}
	var x mat.Dense
	x.Mul(w, h)
	return &x
}

func TestFactorizeRejectsBadConfig(t *testing.T) {
	x := mat.NewDense(4, 3, nil)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero rank", cfg: Config{Rank: 0, Tol: 1e-4, MaxIter: 10}},
		{name: "rank above rows", cfg: Config{Rank: 5, Tol: 1e-4, MaxIter: 10}},
		{name: "rank above cols", cfg: Config{Rank: 4, Tol: 1e-4, MaxIter: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Factorize(x, tt.cfg, rng)
			var rankErr *RankError
			if !errors.As(err, &rankErr) {
				t.Errorf("Factorize() error = %v, want RankError", err)
			}
		})
	}

	if _, err := Factorize(x, Config{Rank: 2, Tol: 1e-4, MaxIter: 0}, rng); err == nil {
		t.Error("Factorize() with zero MaxIter expected error, got nil")
	}
}

func TestFactorizeNonNegativity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	x := lowRankMatrix(rng)

	f, err := Factorize(x, Config{Rank: 3, Tol: 0, MaxIter: 50}, rng)
	if err != nil {
		t.Fatalf("Factorize() unexpected error: %v", err)
	}

	for _, m := range []*mat.Dense{f.W, f.H} {
		for _, v := range m.RawMatrix().Data {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("factor contains invalid entry %g", v)
			}
		}
	}
}

func TestFactorizeObjectiveNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := lowRankMatrix(rng)

	// tol 0 forces the full iteration budget so the whole trajectory is
	// visible
	f, err := Factorize(x, Config{Rank: 2, Tol: 0, MaxIter: 50}, rng)
	if err != nil {
		t.Fatalf("Factorize() unexpected error: %v", err)
	}
	if f.Iters != 50 {
		t.Fatalf("Iters = %d, want 50", f.Iters)
	}

	for i := 1; i < len(f.Trajectory); i++ {
		if f.Trajectory[i] > f.Trajectory[i-1]+1e-8 {
			t.Errorf("trajectory increased at iteration %d: %g -> %g", i, f.Trajectory[i-1], f.Trajectory[i])
		}
	}
}

func TestProjectRecoversExactCombination(t *testing.T) {
	w := mat.NewDense(6, 2, []float64{
		1, 0,
		0.5, 0.5,
		0, 1,
		2, 0,
		0, 2,
		1, 1,
	})
	want := []float64{1.5, 0.25}

	x := mat.NewDense(6, 1, nil)
	for i := 0; i < 6; i++ {
		x.Set(i, 0, w.At(i, 0)*want[0]+w.At(i, 1)*want[1])
	}

	f := &Factorization{W: w}
	h, err := f.Project(x)
	if err != nil {
		t.Fatalf("Project() unexpected error: %v", err)
	}
	for i := range want {
		if math.Abs(h.At(i, 0)-want[i]) > 1e-8 {
			t.Errorf("Project() h[%d] = %g, want %g", i, h.At(i, 0), want[i])
		}
	}
}
