// Package trial orchestrates repeated randomized trials across all
// classification methods, accumulates their results, computes summary
// statistics, identifies the median-performing trial per method, and
// checkpoints everything to durable storage after each trial.
package trial

import (
	"github.com/chriscorrea/topiclab/internal/ssnmf"
)

// Method is the closed enumeration of compared methods. Using an enum
// instead of string keys gives exhaustive switches over the full set.
type Method int

const (
	Model3 Method = iota
	Model4
	Model5
	Model6
	NMF
	NB
	SVM
)

// Methods lists all methods in reporting order.
func Methods() []Method {
	return []Method{Model3, Model4, Model5, Model6, NMF, NB, SVM}
}

// FactorizationMethods lists the methods that produce factor matrices and
// iteration counts.
func FactorizationMethods() []Method {
	return []Method{Model3, Model4, Model5, Model6, NMF}
}

// String returns the reporting name, matching the keys of the persisted
// checkpoint records.
func (m Method) String() string {
	switch m {
	case Model3, Model4, Model5, Model6:
		v, _ := m.Variant()
		return v.String()
	case NMF:
		return "NMF"
	case NB:
		return "NB"
	case SVM:
		return "SVM"
	default:
		return "unknown"
	}
}

// Variant maps an SSNMF method onto its model variant; ok is false for the
// baseline methods.
func (m Method) Variant() (ssnmf.Variant, bool) {
	switch m {
	case Model3:
		return ssnmf.Model3, true
	case Model4:
		return ssnmf.Model4, true
	case Model5:
		return ssnmf.Model5, true
	case Model6:
		return ssnmf.Model6, true
	default:
		return 0, false
	}
}

// variantIndex returns the position of an SSNMF method in the per-variant
// configuration lists (tolerances, regularization weights); ok is false for
// the baseline methods.
func (m Method) variantIndex() (int, bool) {
	switch m {
	case Model3, Model4, Model5, Model6:
		return int(m), true
	default:
		return 0, false
	}
}
