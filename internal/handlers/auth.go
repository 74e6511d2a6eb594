package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/services"
)

type AuthHandler struct {
	userService *services.UserService
	jwtCfg      *config.JWTConfig
}

func NewAuthHandler(userService *services.UserService, jwtCfg *config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtCfg:      jwtCfg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Name, h.jwtCfg.Secret, h.jwtCfg.ExpireTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Name, h.jwtCfg.Secret, h.jwtCfg.ExpireTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated user's own profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.userService.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}
