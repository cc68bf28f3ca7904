package authservice

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
)

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(subject string, role string) (string, error)
}

// LoginResponse é a resposta de POST /v1/auth/login.
type LoginResponse struct {
	Token string `json:"token"`
}

// Service autentica o operador único da API (rotas de seed).
type Service struct {
	username     string
	passwordHash []byte
	tokenSvc     TokenService
	logger       logger.Logger
}

// NewService recebe o usuário e o hash bcrypt configurados no ambiente.
// Com hash vazio todo login é recusado.
func NewService(username, passwordHash string, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokenSvc:     tokenSvc,
		logger:       log,
	}
}

// Login verifica as credenciais e gera um JWT com a role admin.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return LoginResponse{}, apperror.NewUnauthorizedError("Usuário e senha são obrigatórios.")
	}
	if len(s.passwordHash) == 0 {
		s.logger.Warn("Login recusado: ADMIN_PASSWORD_HASH não configurado.", nil)
		return LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// Compara a senha mesmo com usuário errado, para não revelar qual campo falhou.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		s.logger.Info("Tentativa de login inválida.", map[string]interface{}{"username": username})
		return LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokenSvc.GenerateToken(s.username, string(domain.RoleAdmin))
	if err != nil {
		return LoginResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return LoginResponse{Token: tokenString}, nil
}
