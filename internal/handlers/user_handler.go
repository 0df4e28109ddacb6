package handlers

import (
	"errors"
	"net/http"
	"strings"

	"kollab-api/internal/models"
	"kollab-api/internal/profiles"

	"github.com/gin-gonic/gin"
)

// GetUsers resolves the comma separated ids in ?ids= through the profile
// cache. Unknown ids are left out. A failed batch still returns what resolved
// with "partial" set.
// GET /api/users
func (h *Handler) GetUsers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		badRequest(c, "ids query parameter is required")
		return
	}

	found, err := h.profiles.GetProfiles(c.Request.Context(), ids)
	partial := errors.Is(err, profiles.ErrPartialBatch)
	if err != nil && !partial {
		h.respondError(c, err)
		return
	}

	resp := make([]models.UserProfile, 0, len(found))
	seen := make(map[string]bool, len(found))
	for _, id := range ids {
		if p, ok := found[id]; ok && !seen[id] {
			seen[id] = true
			resp = append(resp, p)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"users":   resp,
		"count":   len(resp),
		"partial": partial,
	})
}

// GetMe returns the caller's own profile.
// GET /api/users/me
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
