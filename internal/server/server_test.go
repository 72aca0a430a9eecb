package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamewish/internal/repositories"
	"gamewish/internal/server"
	"gamewish/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(checks map[string]server.HealthCheck) *fiber.App {
	log := zap.NewNop()
	users := repositories.NewMemoryUserRepository()
	games := repositories.NewMemoryGameRepository()
	tokens := services.NewTokenIssuer("server-secret", time.Hour)

	return server.NewApp(server.Deps{
		Auth:     services.NewAuthService(users, services.NewBcryptHasher(4), tokens, nil, log),
		Profiles: services.NewProfileService(users, nil, log),
		Games:    services.NewGameService(games, repositories.NewMemoryWishlistRepository(games), users, nil, nil, log),
		Log:      log,
		Checks:   checks,
	})
}

func health(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthy(t *testing.T) {
	status, body := health(t, newApp(map[string]server.HealthCheck{
		"database": func(context.Context) error { return nil },
	}))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"database": "connected"}, body["dependencies"])
}

func TestHealthDegraded(t *testing.T) {
	status, body := health(t, newApp(map[string]server.HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "connection refused", deps["redis"])
	assert.Equal(t, "connected", deps["database"])
}

func TestRoutesAreMounted(t *testing.T) {
	app := newApp(nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/games", http.StatusOK},
		{http.MethodGet, "/api/v1/games/search", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/games/nope", http.StatusNotFound},
		{http.MethodGet, "/api/v1/users/nope", http.StatusNotFound},
		{http.MethodGet, "/api/v1/wishlist/nope", http.StatusNotFound},
		{http.MethodPut, "/api/v1/users/nope/profile", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/wishlist", http.StatusUnauthorized},
		{http.MethodDelete, "/api/v1/wishlist/u/g", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
