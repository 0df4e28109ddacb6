package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"kollab-api/internal/auth"
	"kollab-api/internal/autoupdate"
	"kollab-api/internal/middleware"
	"kollab-api/internal/profiles"
	"kollab-api/internal/realtime"
	"kollab-api/internal/services"
	"kollab-api/internal/summary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options lists everything the HTTP layer talks to.
type Options struct {
	Workflows  *services.WorkflowService
	Tasks      *services.TaskService
	Accounts   *services.AccountService
	Profiles   *profiles.Resolver
	Summarizer summary.Summarizer
	Dispatcher *autoupdate.Dispatcher
	Hub        *realtime.Hub
	Tokens     *auth.Tokens
	Identity   *auth.ProviderVerifier // nil disables login
	Log        *zap.SugaredLogger
}

// Handler serves the REST and websocket endpoints.
type Handler struct {
	workflows  *services.WorkflowService
	tasks      *services.TaskService
	accounts   *services.AccountService
	profiles   *profiles.Resolver
	summarizer summary.Summarizer
	dispatcher *autoupdate.Dispatcher
	hub        *realtime.Hub
	tokens     *auth.Tokens
	identity   *auth.ProviderVerifier
	log        *zap.SugaredLogger
}

func New(o Options) *Handler {
	if o.Summarizer == nil {
		o.Summarizer = summary.Disabled{}
	}
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	return &Handler{
		workflows:  o.Workflows,
		tasks:      o.Tasks,
		accounts:   o.Accounts,
		profiles:   o.Profiles,
		summarizer: o.Summarizer,
		dispatcher: o.Dispatcher,
		hub:        o.Hub,
		tokens:     o.Tokens,
		identity:   o.Identity,
		log:        o.Log,
	}
}

// currentUser returns the authenticated user id, writing a 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return "", false
	}
	return userID, true
}

// respondError maps service errors onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, summary.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, summary.ErrEmptySummary):
		status = http.StatusBadGateway
	}

	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseDateFlexible(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",  // ISO date
		"2 Jan 2006",  // e.g., 30 Oct 2025
		"02 Jan 2006", // zero-padded day
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
