package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/models"
	"github.com/gadsdencode/Podster/internal/services/auth"
)

func newAuthTestRouter() (*gin.Engine, *auth.JWTService) {
	gin.SetMode(gin.TestMode)

	cfg := &config.APIConfig{APIKey: "sk-podster-test"}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:           "handler-test-secret",
		AccessTokenDuration: time.Hour,
	})
	h := NewAuthHandler(cfg, jwtService)

	r := gin.New()
	r.POST("/api/v1/auth/token", h.Token)
	r.POST("/api/v1/auth/refresh", h.Refresh)
	return r, jwtService
}

func TestTokenEndpoint(t *testing.T) {
	r, jwtService := newAuthTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/token", models.TokenRequest{
		APIKey: "sk-podster-test",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var pair models.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("token pair has empty tokens")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", pair.TokenType)
	}

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not validate: %v", err)
	}
	if claims.ClientID != "podster-api" {
		t.Errorf("ClientID = %q", claims.ClientID)
	}
}

func TestTokenEndpointRejectsWrongKey(t *testing.T) {
	r, _ := newAuthTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/token", models.TokenRequest{
		APIKey: "sk-wrong",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestTokenEndpointRequiresBody(t *testing.T) {
	r, _ := newAuthTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/token", map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	r, jwtService := newAuthTestRouter()

	pair, err := jwtService.GenerateTokenPair("podster-api")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", models.RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var refreshed models.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, err := jwtService.ValidateAccessToken(refreshed.AccessToken); err != nil {
		t.Errorf("refreshed access token does not validate: %v", err)
	}
}

func TestRefreshEndpointRejectsAccessToken(t *testing.T) {
	r, jwtService := newAuthTestRouter()

	pair, err := jwtService.GenerateTokenPair("podster-api")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", models.RefreshRequest{
		RefreshToken: pair.AccessToken,
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for an access token", w.Code)
	}
}

func TestRefreshEndpointRejectsGarbage(t *testing.T) {
	r, _ := newAuthTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/refresh", models.RefreshRequest{
		RefreshToken: "not.a.token",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
