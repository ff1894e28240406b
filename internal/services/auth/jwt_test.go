package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:            "test-secret-key-for-unit-tests",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		Issuer:               "podster-test",
	})
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GenerateTokenPair("extraction-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	if pair.AccessToken == "" {
		t.Error("access token is empty")
	}
	if pair.RefreshToken == "" {
		t.Error("refresh token is empty")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens should differ")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want %q", pair.TokenType, "Bearer")
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", pair.ExpiresIn)
	}
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair("extraction-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.ClientID != "extraction-client" {
		t.Errorf("ClientID = %q, want %q", claims.ClientID, "extraction-client")
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, "access")
	}
	if claims.ID == "" {
		t.Error("JTI is empty")
	}

	// A refresh token must not pass access validation.
	if _, err := svc.ValidateAccessToken(pair.RefreshToken); err == nil {
		t.Error("ValidateAccessToken() accepted a refresh token")
	}
}

func TestValidateRefreshToken(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair("extraction-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, "refresh")
	}

	if _, err := svc.ValidateRefreshToken(pair.AccessToken); err == nil {
		t.Error("ValidateRefreshToken() accepted an access token")
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newTestService()
	pair, err := svc.GenerateTokenPair("extraction-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	if _, err := svc.ValidateToken(tampered); err == nil {
		t.Error("ValidateToken() accepted a tampered token")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	svc := newTestService()
	other := NewJWTService(JWTConfig{SecretKey: "a-completely-different-secret"})

	pair, err := svc.GenerateTokenPair("extraction-client")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}

	if _, err := other.ValidateToken(pair.AccessToken); err == nil {
		t.Error("ValidateToken() accepted a token signed with another key")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newTestService()

	token, err := svc.generateToken("extraction-client", "access", -time.Minute)
	if err != nil {
		t.Fatalf("generateToken() error = %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted an expired token")
	}
}

func TestExtractTokenFromBearer(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bearer prefix", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"no prefix", "abc.def.ghi", "abc.def.ghi"},
		{"empty", "", ""},
		{"bearer only", "Bearer ", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.ExtractTokenFromBearer(tt.input); got != tt.want {
				t.Errorf("ExtractTokenFromBearer(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		presented  string
		configured string
		want       bool
	}{
		{"match", "sk-podster-123", "sk-podster-123", true},
		{"mismatch", "sk-podster-123", "sk-podster-456", false},
		{"empty presented", "", "sk-podster-123", false},
		{"empty configured", "sk-podster-123", "", false},
		{"both empty", "", "", false},
		{"prefix only", "sk-podster", "sk-podster-123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.presented, tt.configured); got != tt.want {
				t.Errorf("ValidateAPIKey(%q, %q) = %v, want %v", tt.presented, tt.configured, got, tt.want)
			}
		})
	}
}

func TestDefaultConfigNormalization(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "k"})

	if svc.config.AccessTokenDuration != DefaultAccessTokenDuration {
		t.Errorf("AccessTokenDuration = %v, want %v", svc.config.AccessTokenDuration, DefaultAccessTokenDuration)
	}
	if svc.config.RefreshTokenDuration != DefaultRefreshTokenDuration {
		t.Errorf("RefreshTokenDuration = %v, want %v", svc.config.RefreshTokenDuration, DefaultRefreshTokenDuration)
	}
	if svc.config.Issuer != DefaultIssuer {
		t.Errorf("Issuer = %q, want %q", svc.config.Issuer, DefaultIssuer)
	}

	pair, err := svc.GenerateTokenPair("c")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if !strings.Contains(pair.AccessToken, ".") {
		t.Errorf("access token %q does not look like a JWT", pair.AccessToken)
	}
}
