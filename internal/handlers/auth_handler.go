package handlers

import (
	"net/http"

	"kollab-api/internal/models"
	"kollab-api/internal/services"

	"github.com/gin-gonic/gin"
)

// LoginRequest carries the identity token issued by the sign-in provider.
// The user is taken from the verified token; uid, when sent, must match it.
type LoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
	UID     string `json:"uid"`
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

// Login handles POST /api/login. It verifies the provider's identity token,
// records the profile and issues an API token.
func (h *Handler) Login(c *gin.Context) {
	if h.identity == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sign-in is not configured"})
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request. idToken is required.")
		return
	}

	id, err := h.identity.Verify(req.IDToken)
	if err != nil {
		h.log.Infow("identity token rejected", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid identity token"})
		return
	}
	if req.UID != "" && req.UID != id.UID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "uid does not match identity token"})
		return
	}

	profile, err := h.accounts.Login(c.Request.Context(), services.Identity{
		ID:          id.UID,
		DisplayName: id.DisplayName,
		Email:       id.Email,
		AvatarURL:   id.PhotoURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.tokens.Generate(profile.ID, profile.DisplayName)
	if err != nil {
		h.log.Errorw("token signing failed", "userId", profile.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: profile})
}
