package middleware

import (
	"context"
	"net/http"
	"strings"

	"showcase/internal/api/response"
	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
	"showcase/internal/pkg/token"
)

// ContextKey é o tipo das chaves que o middleware grava no contexto.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims são os dados do operador extraídos do JWT.
type UserClaims struct {
	UserID string
	Role   domain.UserRole
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa as claims ao contexto.
func NewAuthMiddleware(tokenSvc TokenService, log logger.Logger) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, UserClaims{
				UserID: claims.UserID,
				Role:   domain.UserRole(claims.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetUserClaimsFromContext extrai as claims gravadas pelo NewAuthMiddleware.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// PermissionMiddleware libera a rota apenas para as roles informadas (403 caso contrário).
func PermissionMiddleware(log logger.Logger, requiredRoles ...domain.UserRole) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, role := range requiredRoles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("Acesso negado.", map[string]interface{}{"user_id": claims.UserID, "role": claims.Role, "path": r.URL.Path})
			response.Error(w, r, log, apperror.NewForbiddenError("Acesso negado. Você não tem a permissão necessária."))
		}
	}
}

// RequireAdmin combina autenticação e a permissão admin numa única cadeia.
func RequireAdmin(tokenSvc TokenService, log logger.Logger) func(next http.HandlerFunc) http.HandlerFunc {
	auth := NewAuthMiddleware(tokenSvc, log)
	perm := PermissionMiddleware(log, domain.RoleAdmin)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return auth(perm(next))
	}
}
