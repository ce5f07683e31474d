package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, res, "Login successful")
}

// POST /api/auth/refresh-token
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	me, err := ah.authService.Me(c.Request.Context(), callerID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, me)
}

// PUT /api/auth/password
func (ah *AuthHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := ah.authService.UpdatePassword(c.Request.Context(), callerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondMessage(c, nil, "Password updated")
}

// POST /api/auth/logout
// Tokens are stateless; the client discards them.
func (ah *AuthHandler) Logout(c *gin.Context) {
	ah.log.Debug("Logout", "user_id", callerID(c).String())
	response.RespondMessage(c, nil, "Logged out")
}
