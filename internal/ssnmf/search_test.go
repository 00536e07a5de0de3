package ssnmf

import (
	"math/rand"
	"testing"
)

func TestSearchReturnsValidHyperparams(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	x, y, _ := syntheticProblem(12, 12, 2, rng)
	valX, valY, valLabels := syntheticProblem(12, 8, 2, rand.New(rand.NewSource(18)))

	init := Hyperparams{Rank: 2, Lambda: 1, MaxIter: 60, Tol: 1e-4}
	got, err := Search(Model3, x, y, valX, valY, valLabels, init, SearchConfig{MaxSteps: 2}, rng)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Search() returned invalid hyperparameters: %v", err)
	}
}

func TestSearchRejectsInvalidInit(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x, y, labels := syntheticProblem(8, 8, 2, rng)

	_, err := Search(Model3, x, y, x, y, labels, Hyperparams{Rank: 0, MaxIter: 10}, SearchConfig{}, rng)
	if err == nil {
		t.Fatal("Search() expected error for rank 0, got nil")
	}
}

func TestNeighborhoodRespectsBounds(t *testing.T) {
	hp := Hyperparams{Rank: 1, Lambda: 0, MaxIter: 50, Tol: 1e-4}
	for _, cand := range neighborhood(hp, 10, 10) {
		if cand.Rank < 1 {
			t.Errorf("neighborhood produced rank %d", cand.Rank)
		}
		if cand.Lambda < 0 {
			t.Errorf("neighborhood produced lambda %g", cand.Lambda)
		}
		if cand.MaxIter < 1 {
			t.Errorf("neighborhood produced maxIter %d", cand.MaxIter)
		}
	}

	// rank capped by the smaller data dimension
	for _, cand := range neighborhood(Hyperparams{Rank: 3, Lambda: 1, MaxIter: 100, Tol: 0}, 3, 10) {
		if cand.Rank > 3 {
			t.Errorf("neighborhood produced rank %d above dimension bound 3", cand.Rank)
		}
	}
}

func TestDefaultScorePenalizesReconstruction(t *testing.T) {
	a := Evaluation{Accuracy: 0.9, Data: 0}
	b := Evaluation{Accuracy: 0.9, Data: 10}
	if DefaultScore(a) <= DefaultScore(b) {
		t.Error("DefaultScore should prefer lower reconstruction error at equal accuracy")
	}
}
