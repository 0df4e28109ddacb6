package handlers

import (
	"net/http"

	"kollab-api/internal/models"
	"kollab-api/internal/services"
	"kollab-api/internal/summary"

	"github.com/gin-gonic/gin"
)

type CreateWorkflowRequest struct {
	Name     string `json:"name" binding:"required"`
	Template string `json:"template"`
}

type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

type AutoUpdateRequest struct {
	Enabled     bool                       `json:"enabled"`
	Frequency   models.AutoUpdateFrequency `json:"frequency"`
	ClientEmail string                     `json:"clientEmail"`
}

type SummaryRequest struct {
	Context []string `json:"context"`
}

// ListTemplates returns the names of the built-in workflow layouts.
// GET /api/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": services.TemplateNames()})
}

// ListWorkflows handles GET /api/workflows
func (h *Handler) ListWorkflows(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.workflows.ListWorkflows(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": list, "count": len(list)})
}

// CreateWorkflow handles POST /api/workflows
func (h *Handler) CreateWorkflow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, tasks, err := h.workflows.CreateWorkflow(c.Request.Context(), userID, req.Name, req.Template)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workflow": w, "tasks": tasks})
}

// GetWorkflow returns the board with its active tasks.
// GET /api/workflows/:id
func (h *Handler) GetWorkflow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	w, err := h.workflows.GetWorkflow(ctx, userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	tasks, err := h.tasks.ListActiveTasks(ctx, userID, w.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": w, "tasks": tasks})
}

// ListWorkflowTasks handles GET /api/workflows/:id/tasks?archived=true
func (h *Handler) ListWorkflowTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var (
		tasks []models.Task
		err   error
	)
	if c.Query("archived") == "true" {
		tasks, err = h.tasks.ListArchivedTasks(c.Request.Context(), userID, c.Param("id"))
	} else {
		tasks, err = h.tasks.ListActiveTasks(c.Request.Context(), userID, c.Param("id"))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// RenameWorkflow handles PATCH /api/workflows/:id
func (h *Handler) RenameWorkflow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.workflows.RenameWorkflow(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWorkflow removes the board and every task on it.
// DELETE /api/workflows/:id
func (h *Handler) DeleteWorkflow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.workflows.DeleteWorkflow(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted successfully"})
}

// AddColumn handles POST /api/workflows/:id/columns
func (h *Handler) AddColumn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.workflows.AddColumn(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// RenameColumn handles PATCH /api/workflows/:id/columns/:columnId
func (h *Handler) RenameColumn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.workflows.RenameColumn(c.Request.Context(), userID, c.Param("id"), c.Param("columnId"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteColumn handles DELETE /api/workflows/:id/columns/:columnId
func (h *Handler) DeleteColumn(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	w, err := h.workflows.DeleteColumn(c.Request.Context(), userID, c.Param("id"), c.Param("columnId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// UpdateAutoUpdate handles PUT /api/workflows/:id/auto-update
func (h *Handler) UpdateAutoUpdate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AutoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.workflows.UpdateAutoUpdateSettings(c.Request.Context(), userID, c.Param("id"), services.AutoUpdateSettings{
		Enabled:     req.Enabled,
		Frequency:   req.Frequency,
		ClientEmail: req.ClientEmail,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// GenerateSummary drafts a client progress summary on demand.
// POST /api/workflows/:id/summary
func (h *Handler) GenerateSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req SummaryRequest
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	w, err := h.workflows.GetWorkflow(ctx, userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	tasks, err := h.tasks.ListActiveTasks(ctx, userID, w.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	text, err := h.summarizer.Summarize(ctx, summary.Input{
		WorkflowName: w.Name,
		Tasks:        summary.DigestTasks(w, tasks),
		Context:      req.Context,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}
