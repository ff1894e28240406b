package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/models"
	"github.com/gadsdencode/Podster/internal/services/auth"
	"github.com/gadsdencode/Podster/internal/utils"
)

// apiClientID names the service client in issued tokens. A single shared
// API key means a single logical client.
const apiClientID = "podster-api"

type AuthHandler struct {
	cfg        *config.APIConfig
	jwtService *auth.JWTService
}

func NewAuthHandler(cfg *config.APIConfig, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		cfg:        cfg,
		jwtService: jwtService,
	}
}

// Token godoc
// @Summary Exchange the API key for a token pair
// @Description Exchange the configured service API key for a JWT access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.TokenRequest true "Service API key"
// @Success 200 {object} models.TokenPair
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	if !auth.ValidateAPIKey(req.APIKey, h.cfg.APIKey) {
		utils.LogWarn(ctx, "Token request with invalid API key", utils.Fields{
			"ip": c.ClientIP(),
		})
		h.errorResponse(c, utils.NewUnauthorizedError())
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(apiClientID)
	if err != nil {
		utils.LogError(ctx, "Failed to generate token pair", err)
		h.errorResponse(c, utils.NewInternalError())
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh godoc
// @Summary Refresh an access token
// @Description Exchange a refresh token for a new access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.TokenPair
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.errorResponse(c, utils.NewUnauthorizedError())
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(claims.ClientID)
	if err != nil {
		utils.LogError(ctx, "Failed to generate token pair", err)
		h.errorResponse(c, utils.NewInternalError())
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) errorResponse(c *gin.Context, err *utils.AppError) {
	c.JSON(err.StatusCode, gin.H{
		"error":      err,
		"request_id": c.GetString("request_id"),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
