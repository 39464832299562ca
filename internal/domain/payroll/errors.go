package payroll

import (
	"fmt"
)

// ErrorKind classifies a calculation failure.
type ErrorKind string

const (
	// ErrKindMissingInput signals a required employee/period field that is
	// absent or non-positive. Fatal for the employee's calculation.
	ErrKindMissingInput ErrorKind = "MISSING_INPUT"

	// ErrKindUnknownVariable signals a catalog formula referencing a
	// variable that is not present in the variable context.
	ErrKindUnknownVariable ErrorKind = "UNKNOWN_VARIABLE"

	// ErrKindDivisionByZero signals a formula dividing by zero.
	ErrKindDivisionByZero ErrorKind = "DIVISION_BY_ZERO"

	// ErrKindInvalidTaxBase signals a negative or out-of-range base passed
	// to a tax table function.
	ErrKindInvalidTaxBase ErrorKind = "INVALID_TAX_BASE"

	// ErrKindInvalidFormula signals a formula that failed to parse or call
	// an unregistered table function.
	ErrKindInvalidFormula ErrorKind = "INVALID_FORMULA"

	// ErrKindInvalidCatalog signals a structural catalog problem detected
	// at load time, before any employee is processed.
	ErrKindInvalidCatalog ErrorKind = "INVALID_CATALOG"
)

// CalculationError is the tagged failure returned by the calculator.
// Fatal errors abort only the single employee's calculation; the partial
// audit trail accumulated up to the failure travels with the error so
// callers can inspect how far the run got.
type CalculationError struct {
	Kind    ErrorKind
	Concept string // code of the offending catalog concept, if any
	Message string
	Trail   []TrailEntry
	Err     error
}

// Error implements the error interface
func (e *CalculationError) Error() string {
	if e.Concept != "" {
		return fmt.Sprintf("%s [concept %s]: %s", e.Kind, e.Concept, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error
func (e *CalculationError) Unwrap() error {
	return e.Err
}

// WithConcept returns a copy of the error annotated with the concept code
// so catalog authors can locate the misconfigured entry.
func (e *CalculationError) WithConcept(code string) *CalculationError {
	clone := *e
	clone.Concept = code
	return &clone
}

// NewMissingInputError builds a fatal missing-input error for a field
func NewMissingInputError(field string) *CalculationError {
	return &CalculationError{
		Kind:    ErrKindMissingInput,
		Message: fmt.Sprintf("required input %q is absent or non-positive", field),
	}
}

// NewUnknownVariableError builds the error for an unresolved variable name
func NewUnknownVariableError(name string) *CalculationError {
	return &CalculationError{
		Kind:    ErrKindUnknownVariable,
		Message: fmt.Sprintf("formula references undefined variable %q", name),
	}
}

// NewDivisionByZeroError builds the error for a zero divisor
func NewDivisionByZeroError() *CalculationError {
	return &CalculationError{
		Kind:    ErrKindDivisionByZero,
		Message: "formula divides by zero",
	}
}

// NewInvalidTaxBaseError builds the error for a tax-table domain violation
func NewInvalidTaxBaseError(detail string) *CalculationError {
	return &CalculationError{
		Kind:    ErrKindInvalidTaxBase,
		Message: detail,
	}
}

// NewInvalidFormulaError builds the error for an unparsable formula or an
// unregistered table function
func NewInvalidFormulaError(detail string) *CalculationError {
	return &CalculationError{
		Kind:    ErrKindInvalidFormula,
		Message: detail,
	}
}

// NewInvalidCatalogError builds the load-time error for a broken catalog
func NewInvalidCatalogError(conceptCode, detail string) *CalculationError {
	return &CalculationError{
		Kind:    ErrKindInvalidCatalog,
		Concept: conceptCode,
		Message: detail,
	}
}
