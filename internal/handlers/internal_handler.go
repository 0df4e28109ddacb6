package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunAutoUpdates performs one dispatch pass for an external scheduler.
// POST /internal/auto-updates/run
func (h *Handler) RunAutoUpdates(c *gin.Context) {
	res, err := h.dispatcher.Run(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
