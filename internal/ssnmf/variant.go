// Package ssnmf implements (semi-)supervised non-negative matrix
// factorization: joint factorization of a feature matrix X ≈ A·S and a label
// matrix Y ≈ B·S sharing one non-negative representation S, fitted by
// multiplicative updates.
//
// Four model variants are supported, differing only in which norm each
// reconstruction term uses; the alternating-update structure is shared.
package ssnmf

// Variant identifies one of the four supported joint-factorization
// formulations. The numbering matches the external labeling convention the
// results are reported under.
type Variant int

const (
	// Model3 uses squared Frobenius norms for both the data term ‖X−AS‖²
	// and the label term λ‖Y−BS‖².
	Model3 Variant = iota + 3
	// Model4 uses a squared Frobenius data term and an information
	// divergence label term λ·D(Y‖BS).
	Model4
	// Model5 uses an information divergence data term D(X‖AS) and a
	// squared Frobenius label term λ‖Y−BS‖².
	Model5
	// Model6 uses information divergence for both terms.
	Model6
)

// Variants lists the supported model variants in reporting order.
func Variants() []Variant {
	return []Variant{Model3, Model4, Model5, Model6}
}

// String returns the reporting name of the variant.
func (v Variant) String() string {
	switch v {
	case Model3:
		return "Model3"
	case Model4:
		return "Model4"
	case Model5:
		return "Model5"
	case Model6:
		return "Model6"
	default:
		return "unknown"
	}
}

// frobeniusData reports whether the data term is squared Frobenius rather
// than information divergence.
func (v Variant) frobeniusData() bool {
	return v == Model3 || v == Model4
}

// frobeniusLabel reports whether the label term is squared Frobenius rather
// than information divergence.
func (v Variant) frobeniusLabel() bool {
	return v == Model3 || v == Model5
}
