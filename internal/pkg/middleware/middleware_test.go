package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase/internal/domain"
	"showcase/internal/pkg/cache"
	"showcase/internal/pkg/logger"
	"showcase/internal/pkg/middleware"
	"showcase/internal/pkg/token"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireAdmin(t *testing.T) {
	tokens := token.NewService("segredo", time.Hour)
	h := middleware.RequireAdmin(tokens, logger.Nop())(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "admin", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})

	adminToken, err := tokens.GenerateToken("admin", string(domain.RoleAdmin))
	require.NoError(t, err)
	guestToken, err := tokens.GenerateToken("visitante", "guest")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"malformado", "Token abc", http.StatusUnauthorized},
		{"inválido", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"sem permissão", "Bearer " + guestToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/products/seed", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestPermissionMiddleware_WithoutClaims(t *testing.T) {
	h := middleware.PermissionMiddleware(logger.Nop(), domain.RoleAdmin)(okHandler)
	rec := httptest.NewRecorder()

	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"UNAUTHORIZED"`)
}

func doRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_RedisFixedWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rc, err := cache.NewRedisClient(mr.Addr(), time.Second)
	require.NoError(t, err)

	h := middleware.RateLimiter(rc, 2, time.Minute, logger.Nop())(http.HandlerFunc(okHandler))

	assert.Equal(t, "1", doRequest(h, "10.0.0.1").Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1").Code)
	rec := doRequest(h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":429`)

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2").Code)
	assert.Equal(t, time.Minute, mr.TTL("rate-limit:10.0.0.1"))

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1").Code)
}

func TestRateLimiter_LocalFallbackWithoutRedis(t *testing.T) {
	h := middleware.RateLimiter(cache.NopClient{}, 3, time.Hour, logger.Nop())(http.HandlerFunc(okHandler))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.9").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.9").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.10").Code)
}

func TestRequestLogger_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerWithWriter("info", &buf)
	h := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
}
