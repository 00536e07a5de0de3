// Package store holds the precomputed numeric representations of a document
// corpus: TF-IDF feature matrices and one-hot label matrices for the four
// fixed splits (train, validation, test, full-train), plus read-only class
// and feature name metadata.
//
// A Store is immutable after construction. Construction validates the
// dimensional invariants that every downstream method relies on: all splits
// share one vocabulary (row space), every label column is one-hot, and the
// full-train split is exactly the column-concatenation of train and
// validation.
package store

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Split identifies one of the four fixed data splits.
type Split int

const (
	// Train is the split used for fitting during hyperparameter search.
	Train Split = iota
	// Validation is the held-out split scored during hyperparameter search.
	Validation
	// Test is the final held-out split.
	Test
	// FullTrain is the column-concatenation of Train and Validation,
	// used for the final fit of every method.
	FullTrain
)

// Splits lists all splits in their canonical order.
func Splits() []Split {
	return []Split{Train, Validation, Test, FullTrain}
}

// String returns the split name.
func (s Split) String() string {
	switch s {
	case Train:
		return "train"
	case Validation:
		return "validation"
	case Test:
		return "test"
	case FullTrain:
		return "full-train"
	default:
		return "unknown"
	}
}

// MismatchError reports a dimension or class-set inconsistency between
// splits. It is fatal for the invocation that triggered it and is always
// raised before any fitting work begins.
type MismatchError struct {
	Reason string
}

func (e *MismatchError) Error() string {
	return "data mismatch: " + e.Reason
}

// Store exposes immutable read access to the feature/label matrices of the
// four named splits. Accessors return internal matrices directly; callers
// must not mutate them.
type Store struct {
	features map[Split]*mat.Dense // terms × documents, per split
	onehot   map[Split]*mat.Dense // classes × documents, per split
	labels   map[Split][]int      // 1-indexed class ids, per split

	classNames   []string
	featureNames []string
}

// New assembles a store from per-split feature matrices and 1-indexed
// integer labels. One-hot label matrices are derived here, with class
// ordering fixed by classNames, so every split shares the same class axis.
func New(features map[Split]*mat.Dense, labels map[Split][]int, classNames, featureNames []string) (*Store, error) {
	if len(classNames) == 0 {
		return nil, &MismatchError{Reason: "no class names provided"}
	}

	st := &Store{
		features:     make(map[Split]*mat.Dense, len(features)),
		onehot:       make(map[Split]*mat.Dense, len(features)),
		labels:       make(map[Split][]int, len(features)),
		classNames:   classNames,
		featureNames: featureNames,
	}

	terms := -1
	for _, split := range Splits() {
		x, ok := features[split]
		if !ok {
			return nil, &MismatchError{Reason: fmt.Sprintf("missing %s feature matrix", split)}
		}
		y, ok := labels[split]
		if !ok {
			return nil, &MismatchError{Reason: fmt.Sprintf("missing %s labels", split)}
		}

		r, c := x.Dims()
		if terms < 0 {
			terms = r
		} else if r != terms {
			return nil, &MismatchError{Reason: fmt.Sprintf("%s split has %d terms, expected %d", split, r, terms)}
		}
		if len(y) != c {
			return nil, &MismatchError{Reason: fmt.Sprintf("%s split has %d documents but %d labels", split, c, len(y))}
		}

		oh, err := oneHot(y, len(classNames), split)
		if err != nil {
			return nil, err
		}

		st.features[split] = x
		st.onehot[split] = oh
		st.labels[split] = y
	}

	if featureNames != nil && len(featureNames) != terms {
		return nil, &MismatchError{Reason: fmt.Sprintf("%d feature names for %d terms", len(featureNames), terms)}
	}

	if err := st.checkFullTrain(); err != nil {
		return nil, err
	}
	return st, nil
}

// checkFullTrain verifies that the full-train split is exactly the union
// (column-concatenation) of the train and validation splits, labels included.
func (st *Store) checkFullTrain() error {
	_, nTrain := st.features[Train].Dims()
	_, nVal := st.features[Validation].Dims()
	_, nFull := st.features[FullTrain].Dims()
	if nFull != nTrain+nVal {
		return &MismatchError{Reason: fmt.Sprintf("full-train has %d documents, expected %d train + %d validation", nFull, nTrain, nVal)}
	}

	terms := st.Terms()
	for j := 0; j < nFull; j++ {
		src := st.features[Train]
		srcLabels := st.labels[Train]
		col := j
		if j >= nTrain {
			src = st.features[Validation]
			srcLabels = st.labels[Validation]
			col = j - nTrain
		}
		if st.labels[FullTrain][j] != srcLabels[col] {
			return &MismatchError{Reason: fmt.Sprintf("full-train label %d disagrees with its source split", j)}
		}
		for i := 0; i < terms; i++ {
			if st.features[FullTrain].At(i, j) != src.At(i, col) {
				return &MismatchError{Reason: fmt.Sprintf("full-train column %d disagrees with its source split", j)}
			}
		}
	}
	return nil
}

// oneHot encodes 1-indexed labels as a classes × documents matrix where
// every column sums to exactly 1.
func oneHot(labels []int, classes int, split Split) (*mat.Dense, error) {
	if len(labels) == 0 {
		return nil, &MismatchError{Reason: fmt.Sprintf("%s split is empty", split)}
	}
	oh := mat.NewDense(classes, len(labels), nil)
	for j, y := range labels {
		if y < 1 || y > classes {
			return nil, &MismatchError{Reason: fmt.Sprintf("%s label %d out of range [1, %d]", split, y, classes)}
		}
		oh.Set(y-1, j, 1)
	}
	return oh, nil
}

// Features returns the terms × documents feature matrix for a split.
func (st *Store) Features(s Split) *mat.Dense { return st.features[s] }

// OneHot returns the classes × documents one-hot label matrix for a split.
func (st *Store) OneHot(s Split) *mat.Dense { return st.onehot[s] }

// Labels returns the 1-indexed class labels for a split.
func (st *Store) Labels(s Split) []int { return st.labels[s] }

// Terms returns the shared vocabulary size.
func (st *Store) Terms() int {
	r, _ := st.features[Train].Dims()
	return r
}

// Docs returns the number of documents in a split.
func (st *Store) Docs(s Split) int {
	_, c := st.features[s].Dims()
	return c
}

// Classes returns the number of classes.
func (st *Store) Classes() int { return len(st.classNames) }

// ClassNames returns the ordered class names.
func (st *Store) ClassNames() []string { return st.classNames }

// FeatureNames returns the ordered vocabulary terms, or nil if the corpus
// was built without names.
func (st *Store) FeatureNames() []string { return st.featureNames }
