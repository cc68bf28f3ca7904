package authservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"showcase/internal/domain"
	apperror "showcase/internal/errors"
	"showcase/internal/pkg/logger"
	"showcase/internal/pkg/token"
	"showcase/internal/service/authservice"
)

func newService(t *testing.T, tokens *token.Service) *authservice.Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	require.NoError(t, err)
	return authservice.NewService("admin", string(hash), tokens, logger.Nop())
}

func TestLogin_IssuesAdminToken(t *testing.T) {
	tokens := token.NewService("segredo", time.Hour)
	svc := newService(t, tokens)

	res, err := svc.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "s3nha"})

	require.NoError(t, err)
	claims, err := tokens.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
	assert.Equal(t, "admin", claims.UserID)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc := newService(t, token.NewService("segredo", time.Hour))

	cases := map[string]domain.LoginRequest{
		"senha errada":   {Username: "admin", Password: "outra"},
		"usuário errado": {Username: "root", Password: "s3nha"},
		"vazio":          {},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			assert.IsType(t, &apperror.UnauthorizedError{}, err)
		})
	}
}

func TestLogin_WithoutConfiguredHash(t *testing.T) {
	svc := authservice.NewService("admin", "", token.NewService("segredo", time.Hour), logger.Nop())

	_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "x"})

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}
