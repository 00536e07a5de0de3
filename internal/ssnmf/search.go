package ssnmf

import (
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ScorePolicy scores a candidate hyperparameter setting from its validation
// evaluation; higher is better. The trade-off between accuracy and
// reconstruction error is deliberately pluggable.
type ScorePolicy func(Evaluation) float64

// DefaultScore favors validation accuracy with a small penalty on
// normalized data-reconstruction error.
func DefaultScore(e Evaluation) float64 {
	return e.Accuracy - 0.01*e.Data
}

// SearchConfig bounds the iterative local search.
type SearchConfig struct {
	// MaxSteps caps the number of accepted moves.
	MaxSteps int
	// Policy scores candidates; nil means DefaultScore.
	Policy ScorePolicy
}

// DefaultSearchConfig is the bound used when the caller does not care.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{MaxSteps: 10, Policy: DefaultScore}
}

// Search performs an iterative local search over the hyperparameter
// neighborhood of init, fitting each candidate on (x, y) and scoring it on
// the validation split. The search always terminates: it is bounded by
// cfg.MaxSteps accepted moves, and a full neighborhood scan without
// improvement counts as convergence.
func Search(v Variant, x, y, valX, valY *mat.Dense, valLabels []int, init Hyperparams, cfg SearchConfig, rng *rand.Rand) (Hyperparams, error) {
	if err := init.Validate(); err != nil {
		return Hyperparams{}, err
	}
	if cfg.Policy == nil {
		cfg.Policy = DefaultScore
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultSearchConfig().MaxSteps
	}

	terms, docs := x.Dims()

	score := func(hp Hyperparams) (float64, bool) {
		res, err := Evaluate(v, x, y, valX, valY, valLabels, hp, rng)
		if err != nil {
			slog.Debug("search candidate failed", "variant", v.String(), "rank", hp.Rank, "lambda", hp.Lambda, "err", err)
			return 0, false
		}
		return cfg.Policy(res.Eval), true
	}

	best := init
	bestScore, ok := score(init)
	if !ok {
		return init, nil
	}

	for step := 0; step < cfg.MaxSteps; step++ {
		improved := false
		for _, cand := range neighborhood(best, terms, docs) {
			s, ok := score(cand)
			if ok && s > bestScore {
				best, bestScore = cand, s
				improved = true
			}
		}
		if !improved {
			break // full neighborhood scan without improvement
		}
		slog.Debug("search step accepted", "variant", v.String(), "step", step,
			"rank", best.Rank, "lambda", best.Lambda, "maxIter", best.MaxIter, "score", bestScore)
	}
	return best, nil
}

// neighborhood enumerates the feasible local moves around hp: rank ± 1,
// lambda halved and doubled, and the iteration budget shifted by 50.
func neighborhood(hp Hyperparams, terms, docs int) []Hyperparams {
	var out []Hyperparams

	if hp.Rank > 1 {
		c := hp
		c.Rank--
		out = append(out, c)
	}
	if hp.Rank+1 <= terms && hp.Rank+1 <= docs {
		c := hp
		c.Rank++
		out = append(out, c)
	}

	if hp.Lambda > 0 {
		lo, hi := hp, hp
		lo.Lambda = hp.Lambda / 2
		hi.Lambda = hp.Lambda * 2
		out = append(out, lo, hi)
	} else {
		// from zero the only direction is up
		c := hp
		c.Lambda = 0.1
		out = append(out, c)
	}

	if hp.MaxIter > 50 {
		c := hp
		c.MaxIter = hp.MaxIter - 50
		out = append(out, c)
	}
	up := hp
	up.MaxIter = hp.MaxIter + 50
	out = append(out, up)

	return out
}
