package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/auth"
	"github.com/gadsdencode/Podster/internal/utils"
)

// AuthMiddleware authenticates API requests with either the static API key
// or a JWT access token issued by the token endpoint.
func AuthMiddleware(cfg *config.APIConfig, jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// API key directly on the request
		apiKey := c.GetHeader("X-API-Key")
		if apiKey != "" && auth.ValidateAPIKey(apiKey, cfg.APIKey) {
			c.Set("auth_method", "api_key")
			c.Next()
			return
		}

		// Bearer token issued by the token endpoint
		token := extractToken(c)
		if token != "" {
			claims, err := jwtService.ValidateAccessToken(token)
			if err == nil {
				c.Set("client_id", claims.ClientID)
				c.Set("token_jti", claims.ID)
				c.Set("auth_method", "jwt")
				c.Next()
				return
			}
		}

		c.JSON(401, gin.H{
			"error":      utils.NewUnauthorizedError(),
			"request_id": c.GetString("request_id"),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
		c.Abort()
	}
}

// extractToken extracts the JWT token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken == "" {
		return ""
	}

	// Remove "Bearer " prefix
	if len(bearerToken) > 7 && strings.ToLower(bearerToken[:7]) == "bearer " {
		return bearerToken[7:]
	}

	return bearerToken
}
