package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/auth"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.APIConfig{APIKey: "sk-podster-test"}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:           "middleware-test-secret",
		AccessTokenDuration: time.Hour,
	})

	r := gin.New()
	r.Use(AuthMiddleware(cfg, jwtService))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"auth_method": c.GetString("auth_method"),
			"client_id":   c.GetString("client_id"),
		})
	})
	return r, jwtService
}

func TestAuthMiddlewareAPIKey(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-API-Key", "sk-podster-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddlewareJWT(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	pair, err := jwtService.GenerateTokenPair("test-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	r, jwtService := newAuthRouter(t)

	pair, err := jwtService.GenerateTokenPair("test-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for a refresh token", w.Code)
	}
}

func TestAuthMiddlewareRejectsMissingCredentials(t *testing.T) {
	r, _ := newAuthRouter(t)

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"no credentials", "", ""},
		{"wrong api key", "X-API-Key", "sk-wrong"},
		{"garbage token", "Authorization", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
