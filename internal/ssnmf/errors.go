package ssnmf

import "fmt"

// HyperparamError reports invalid hyperparameter inputs. It is raised before
// any fitting work begins.
type HyperparamError struct {
	Field  string
	Reason string
}

func (e *HyperparamError) Error() string {
	return fmt.Sprintf("invalid hyperparameter %s: %s", e.Field, e.Reason)
}

// InstabilityError reports that a factor or representation matrix developed
// negative or non-finite entries despite the multiplicative-update
// safeguards. It signals a degenerate input or an update-rule bug and halts
// the trial rather than silently clipping.
type InstabilityError struct {
	Matrix string
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("numeric instability: matrix %s has negative or non-finite entries", e.Matrix)
}
