package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/server/http/dto"
	"github.com/polkiloo/schoolpay/internal/server/http/middleware"
)

// AuthHandler processes registration and login.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.facade.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to register user")
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusCreated, toAuthResponse(user, token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.facade.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to log in")
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, toAuthResponse(user, token))
}

func toAuthResponse(user *model.User, token string) dto.AuthResponse {
	return dto.AuthResponse{ID: user.ID, Email: user.Email, Token: token}
}
