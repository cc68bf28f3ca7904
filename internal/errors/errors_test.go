package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "showcase/internal/errors"
)

func TestMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		category string
	}{
		{"validação", apperror.NewValidationError("campo ausente"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"estoque", apperror.NewInsufficientStockError("Sofá"), http.StatusBadRequest, apperror.RuleInsufficientStock},
		{"não encontrado", apperror.NewNotFoundError("pedido"), http.StatusNotFound, "NOT_FOUND"},
		{"conflito", apperror.NewConflictError("email"), http.StatusConflict, "CONFLICT"},
		{"não autorizado", apperror.NewUnauthorizedError("token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"proibido", apperror.NewForbiddenError("role"), http.StatusForbidden, "FORBIDDEN"},
		{"limite", apperror.NewRateLimitError("ip"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"interno", apperror.NewDBError("falha", errors.New("conn reset")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"desconhecido", errors.New("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
		{"encapsulado", fmt.Errorf("contexto: %w", apperror.NewNotFoundError("x")), http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, category, _ := apperror.MapToHTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.category, category)
		})
	}
}

func TestMapToHTTPStatus_HidesInternalDetail(t *testing.T) {
	err := apperror.NewDBError("Falha ao buscar pedido", errors.New("pq: password authentication failed"))

	_, _, message := apperror.MapToHTTPStatus(err)

	assert.NotContains(t, message, "password")
	assert.Equal(t, "Ocorreu um erro inesperado.", message)
}

func TestInsufficientStockNamesProduct(t *testing.T) {
	err := apperror.NewInsufficientStockError("Smart LED TV 55\"")
	assert.Contains(t, err.Error(), "Smart LED TV 55\"")
}

func TestClassify(t *testing.T) {
	assert.NoError(t, apperror.Classify("x", nil))

	nf := apperror.NewNotFoundError("carrinho")
	assert.Same(t, nf, apperror.Classify("x", nf))

	raw := errors.New("timeout")
	wrapped := apperror.Classify("Falha interna.", raw)
	assert.IsType(t, &apperror.InternalError{}, wrapped)
	assert.ErrorIs(t, wrapped, raw)
	assert.True(t, apperror.IsNotFound(fmt.Errorf("w: %w", nf)))
}
