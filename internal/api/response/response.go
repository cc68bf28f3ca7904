// Package response padroniza as respostas JSON dos handlers.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
)

// Handle processa o resultado de um serviço: em sucesso escreve data com successStatus,
// em erro traduz o AppError para o status e o corpo padronizados.
func Handle(w http.ResponseWriter, r *http.Request, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(w, r, log, err)
		return
	}
	JSON(w, log, successStatus, data)
}

// JSON escreve data como JSON. data nil escreve apenas o status.
func JSON(w http.ResponseWriter, log logger.Logger, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Falha ao codificar JSON de resposta", err)
	}
}

// Error traduz err para o corpo {error, code, category}. Erros 5xx são logados com a causa;
// o cliente recebe apenas a mensagem genérica.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s %s", r.Method, r.URL.Path), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Error: message, Code: status, Category: category})
}

// DecodeJSON lê o corpo da requisição em dst, devolvendo ValidationError para payload malformado.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperror.NewValidationError("Payload ausente.")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// QueryInt lê um parâmetro inteiro da query string; ausente ou inválido vira 0
// e o serviço aplica o padrão.
func QueryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
