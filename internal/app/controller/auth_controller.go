package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/service"
	apperrors "github.com/ikkim/foodgram-backend/internal/errors"
	"github.com/ikkim/foodgram-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Login issues a token for valid credentials
// POST /api/auth/token/login/
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	log.Debug("Processing login", map[string]interface{}{
		"email": req.Email,
	})

	token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{AuthToken: token})
}

// Logout revokes the token used for this request
// POST /api/auth/token/logout/
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	claims, ok := middleware.GetTokenClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "", "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims); err != nil {
		log.Error("Logout failed", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.Status(http.StatusNoContent)
}
