package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when the tenant context is missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the tenant lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Payroll business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeEmptyRun is used when a batch run has no active employees
	ErrCodeEmptyRun = "ERR_EMPTY_RUN"
	// ErrCodeInactiveEmployee is used when calculating for a non-active employee
	ErrCodeInactiveEmployee = "ERR_INACTIVE_EMPLOYEE"
	// ErrCodeInvalidCatalog is used when the concept catalog fails to compile
	ErrCodeInvalidCatalog = "ERR_INVALID_CATALOG"
)

// Calculation error codes, one per engine failure kind
const (
	// ErrCodeMissingInput is used when a required employee/period input is absent
	ErrCodeMissingInput = "ERR_MISSING_INPUT"
	// ErrCodeUnknownVariable is used when a formula references an undefined variable
	ErrCodeUnknownVariable = "ERR_UNKNOWN_VARIABLE"
	// ErrCodeDivisionByZero is used when a formula divides by zero
	ErrCodeDivisionByZero = "ERR_DIVISION_BY_ZERO"
	// ErrCodeInvalidTaxBase is used when a tax table receives an invalid base
	ErrCodeInvalidTaxBase = "ERR_INVALID_TAX_BASE"
	// ErrCodeInvalidFormula is used when a formula cannot be parsed or evaluated
	ErrCodeInvalidFormula = "ERR_INVALID_FORMULA"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeEmptyRun:         http.StatusUnprocessableEntity,
	ErrCodeInactiveEmployee: http.StatusUnprocessableEntity,
	ErrCodeInvalidCatalog:   http.StatusUnprocessableEntity,

	// Calculation errors -> 422 Unprocessable Entity. The request itself is
	// well-formed; the catalog or the employee data is what is wrong.
	ErrCodeMissingInput:    http.StatusUnprocessableEntity,
	ErrCodeUnknownVariable: http.StatusUnprocessableEntity,
	ErrCodeDivisionByZero:  http.StatusUnprocessableEntity,
	ErrCodeInvalidTaxBase:  http.StatusUnprocessableEntity,
	ErrCodeInvalidFormula:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain-layer error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"EMPTY_RUN":            ErrCodeEmptyRun,
	"INACTIVE_EMPLOYEE":    ErrCodeInactiveEmployee,
	"INVALID_CATALOG":      ErrCodeInvalidCatalog,
	"MISSING_INPUT":        ErrCodeMissingInput,
	"UNKNOWN_VARIABLE":     ErrCodeUnknownVariable,
	"DIVISION_BY_ZERO":     ErrCodeDivisionByZero,
	"INVALID_TAX_BASE":     ErrCodeInvalidTaxBase,
	"INVALID_FORMULA":      ErrCodeInvalidFormula,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// If the code is already in the wire format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
