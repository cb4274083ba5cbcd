package auth

import (
	"errors"
	"net/http"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication. The refresh
// token travels only in an http-only cookie scoped to the auth endpoints;
// the access token only in the JSON body.
type Handler struct {
	service *Service
	cfg     *config.AuthRuntimeConfig
}

func NewHandler(service *Service, cfg *config.AuthRuntimeConfig) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
	}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, ErrWeakPassword):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters with an uppercase letter and a number")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)

	response.Success(c, http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	refreshRaw, err := c.Cookie(h.cfg.RefreshCookieName)
	if err != nil || refreshRaw == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), refreshRaw)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			h.clearRefreshCookie(c)
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)

	response.Success(c, http.StatusOK, gin.H{"access_token": result.AccessToken})
}

// Logout never fails to the caller: with or without a cookie the state ends
// up cleared.
func (h *Handler) Logout(c *gin.Context) {
	refreshRaw, _ := c.Cookie(h.cfg.RefreshCookieName)

	if err := h.service.Logout(c.Request.Context(), refreshRaw); err != nil {
		_ = c.Error(err)
	}

	h.clearRefreshCookie(c)
	response.Message(c, http.StatusOK, "Logged out")
}

func (h *Handler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(sameSiteMode(h.cfg.CookieSameSite))
	c.SetCookie(h.cfg.RefreshCookieName, token, int(h.cfg.RefreshTTL.Seconds()), h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cfg.CookieSameSite))
	c.SetCookie(h.cfg.RefreshCookieName, "", -1, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func sameSiteMode(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
