package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gadsdencode/Podster/internal/models"
	"github.com/gadsdencode/Podster/internal/utils"
)

const (
	// DefaultAccessTokenDuration bounds how long one extraction session can
	// reuse a token before refreshing.
	DefaultAccessTokenDuration  = 1 * time.Hour
	DefaultRefreshTokenDuration = 30 * 24 * time.Hour
	DefaultIssuer               = "podster"
)

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	jwt.RegisteredClaims
	ClientID  string `json:"client_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	Issuer               string
}

// JWTService handles JWT token operations
type JWTService struct {
	config    JWTConfig
	secretKey []byte
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	if config.AccessTokenDuration <= 0 {
		config.AccessTokenDuration = DefaultAccessTokenDuration
	}
	if config.RefreshTokenDuration <= 0 {
		config.RefreshTokenDuration = DefaultRefreshTokenDuration
	}
	if config.Issuer == "" {
		config.Issuer = DefaultIssuer
	}
	return &JWTService{
		config:    config,
		secretKey: []byte(config.SecretKey),
	}
}

// GenerateTokenPair generates both access and refresh tokens for a client
func (j *JWTService) GenerateTokenPair(clientID string) (*models.TokenPair, error) {
	accessToken, err := j.generateToken(clientID, "access", j.config.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := j.generateToken(clientID, "refresh", j.config.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(j.config.AccessTokenDuration.Seconds()),
	}, nil
}

// generateToken creates a JWT token with the specified parameters
func (j *JWTService) generateToken(clientID, tokenType string, duration time.Duration) (string, error) {
	now := time.Now()
	jti, err := j.generateJTI()
	if err != nil {
		return "", fmt.Errorf("failed to generate JTI: %w", err)
	}

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   clientID,
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			NotBefore: jwt.NewNumericDate(now),
		},
		ClientID:  clientID,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates and parses a JWT token
func (j *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	// Validate expiration
	if claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("token has expired")
	}

	return claims, nil
}

// ValidateAccessToken validates an access token specifically
func (j *JWTService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != "access" {
		return nil, fmt.Errorf("invalid token type, expected access token")
	}

	return claims, nil
}

// ValidateRefreshToken validates a refresh token specifically
func (j *JWTService) ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != "refresh" {
		return nil, fmt.Errorf("invalid token type, expected refresh token")
	}

	return claims, nil
}

// ExtractTokenFromBearer extracts token from "Bearer <token>" format
func (j *JWTService) ExtractTokenFromBearer(bearerToken string) string {
	if len(bearerToken) > 7 && bearerToken[:7] == "Bearer " {
		return bearerToken[7:]
	}
	return bearerToken
}

// generateJTI generates a unique JWT ID
func (j *JWTService) generateJTI() (string, error) {
	return utils.GenerateRandomHex(16)
}
