package corpus

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/chriscorrea/topiclab/internal/store"

	"gonum.org/v1/gonum/mat"
)

// Fractions sets the share of documents assigned to the train and
// validation splits; the remainder becomes the test split.
type Fractions struct {
	Train float64
	Val   float64
}

// DefaultFractions is a conventional 60/20/20 split.
func DefaultFractions() Fractions {
	return Fractions{Train: 0.6, Val: 0.2}
}

// Split shuffles the documents with rng and partitions them into train,
// validation, and test sets.
func Split(docs []Document, f Fractions, rng *rand.Rand) (train, val, test []Document, err error) {
	if f.Train <= 0 || f.Val <= 0 || f.Train+f.Val >= 1 {
		return nil, nil, nil, fmt.Errorf("corpus: invalid split fractions train=%g val=%g", f.Train, f.Val)
	}

	shuffled := append([]Document(nil), docs...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTrain := int(f.Train * float64(len(shuffled)))
	nVal := int(f.Val * float64(len(shuffled)))
	if nTrain == 0 || nVal == 0 || nTrain+nVal >= len(shuffled) {
		return nil, nil, nil, fmt.Errorf("corpus: %d documents are too few for the requested split", len(docs))
	}

	return shuffled[:nTrain], shuffled[nTrain : nTrain+nVal], shuffled[nTrain+nVal:], nil
}

// BuildStore runs the full preprocessing pipeline: split the documents, fit
// the vectorizer on the full training set (train + validation), transform
// every split, and assemble the representation store. The full-train split
// is built by column-concatenating train and validation, so the store's
// union invariant holds by construction.
func BuildStore(docs []Document, f Fractions, maxFeatures int, rng *rand.Rand) (*store.Store, error) {
	train, val, test, err := Split(docs, f, rng)
	if err != nil {
		return nil, err
	}
	fullTrain := append(append([]Document(nil), train...), val...)

	vec := NewVectorizer(maxFeatures)
	if err := vec.Fit(fullTrain); err != nil {
		return nil, err
	}

	classNames := ClassNames(docs)
	classIndex := make(map[string]int, len(classNames))
	for i, name := range classNames {
		classIndex[name] = i
	}

	features := make(map[store.Split]*mat.Dense, 4)
	labels := make(map[store.Split][]int, 4)
	for split, set := range map[store.Split][]Document{
		store.Train:      train,
		store.Validation: val,
		store.Test:       test,
		store.FullTrain:  fullTrain,
	} {
		x, err := vec.Transform(set)
		if err != nil {
			return nil, err
		}
		y := make([]int, len(set))
		for j, d := range set {
			y[j] = classIndex[d.Label] + 1 // labels are 1-indexed
		}
		features[split] = x
		labels[split] = y
	}

	slog.Debug("store built",
		"train", len(train), "validation", len(val), "test", len(test),
		"terms", len(vec.FeatureNames()), "classes", len(classNames))

	return store.New(features, labels, classNames, vec.FeatureNames())
}
