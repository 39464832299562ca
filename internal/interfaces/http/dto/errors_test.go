package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeEmptyRun, http.StatusUnprocessableEntity},
		{ErrCodeInactiveEmployee, http.StatusUnprocessableEntity},
		{ErrCodeInvalidCatalog, http.StatusUnprocessableEntity},
		{ErrCodeMissingInput, http.StatusUnprocessableEntity},
		{ErrCodeDivisionByZero, http.StatusUnprocessableEntity},
		{ErrCodeInvalidFormula, http.StatusUnprocessableEntity},
		{"ERR_NO_SUCH_CODE", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("domain codes map to wire codes", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
		assert.Equal(t, ErrCodeEmptyRun, NormalizeErrorCode("EMPTY_RUN"))
		assert.Equal(t, ErrCodeUnknownVariable, NormalizeErrorCode("UNKNOWN_VARIABLE"))
		assert.Equal(t, ErrCodeInvalidTaxBase, NormalizeErrorCode("INVALID_TAX_BASE"))
	})

	t.Run("wire codes pass through", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	})

	t.Run("unknown codes pass through", func(t *testing.T) {
		assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
	})
}

func TestEveryDomainCodeHasAStatus(t *testing.T) {
	for domainCode, wireCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[wireCode]
		assert.True(t, ok, "domain code %s maps to %s which has no HTTP status", domainCode, wireCode)
	}
}
