package handlers

import (
	"context"
	"net/http"
	"time"

	"kollab-api/internal/models"
	"kollab-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	WorkflowID   string              `json:"workflowId" binding:"required"`
	ColumnID     string              `json:"columnId"`
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	Priority     models.TaskPriority `json:"priority"`
	DueDate      string              `json:"dueDate"`
	ClientName   string              `json:"clientName"`
	IsBillable   bool                `json:"isBillable"`
	Deliverables []string            `json:"deliverables"`
}

// UpdateTaskRequest represents the request payload for updating a task.
// An empty dueDate clears it.
type UpdateTaskRequest struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Priority     *models.TaskPriority `json:"priority"`
	DueDate      *string              `json:"dueDate"`
	ClientName   *string              `json:"clientName"`
	IsBillable   *bool                `json:"isBillable"`
	IsCompleted  *bool                `json:"isCompleted"`
	Deliverables *[]string            `json:"deliverables"`
}

type MoveTaskRequest struct {
	SourceColumnID string `json:"sourceColumnId"`
	DestColumnID   string `json:"destColumnId" binding:"required"`
	TargetTaskID   string `json:"targetTaskId"`
}

type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := services.CreateTaskInput{
		WorkflowID:   req.WorkflowID,
		ColumnID:     req.ColumnID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		ClientName:   req.ClientName,
		IsBillable:   req.IsBillable,
		Deliverables: req.Deliverables,
	}
	if req.DueDate != "" {
		due, ok := parseDateFlexible(req.DueDate)
		if !ok {
			badRequest(c, "Invalid dueDate")
			return
		}
		in.DueDate = &due
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), userID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTaskByID handles GET /api/tasks/:id. Archived tasks are returned too.
func (h *Handler) GetTaskByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, err := h.tasks.GetTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := services.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		ClientName:   req.ClientName,
		IsBillable:   req.IsBillable,
		IsCompleted:  req.IsCompleted,
		Deliverables: req.Deliverables,
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			patch.ClearDueDate = true
		} else {
			due, ok := parseDateFlexible(*req.DueDate)
			if !ok {
				badRequest(c, "Invalid dueDate")
				return
			}
			patch.DueDate = &due
		}
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ToggleTaskCompleted handles POST /api/tasks/:id/toggle-complete
func (h *Handler) ToggleTaskCompleted(c *gin.Context) {
	h.taskAction(c, h.tasks.ToggleTaskCompleted)
}

// ArchiveTask handles POST /api/tasks/:id/archive
func (h *Handler) ArchiveTask(c *gin.Context) {
	h.taskAction(c, h.tasks.ArchiveTask)
}

// UnarchiveTask handles POST /api/tasks/:id/unarchive
func (h *Handler) UnarchiveTask(c *gin.Context) {
	h.taskAction(c, h.tasks.UnarchiveTask)
}

func (h *Handler) taskAction(c *gin.Context, fn func(ctx context.Context, userID, taskID string) (*models.Task, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, err := fn(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// MoveTask handles POST /api/tasks/:id/move
func (h *Handler) MoveTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := h.tasks.MoveTask(c.Request.Context(), userID, c.Param("id"), req.SourceColumnID, req.DestColumnID, req.TargetTaskID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AddSubtask handles POST /api/tasks/:id/subtasks
func (h *Handler) AddSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := h.tasks.AddSubtask(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ToggleSubtask handles PATCH /api/tasks/:id/subtasks/:subtaskId
func (h *Handler) ToggleSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, err := h.tasks.ToggleSubtask(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteSubtask handles DELETE /api/tasks/:id/subtasks/:subtaskId
func (h *Handler) DeleteSubtask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, err := h.tasks.DeleteSubtask(c.Request.Context(), userID, c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// AddComment handles POST /api/tasks/:id/comments
func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := h.tasks.AddComment(c.Request.Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListCalendarTasks returns the caller's dated tasks between ?from= and ?to=.
// Without a range it covers the current month.
// GET /api/calendar
func (h *Handler) ListCalendarTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	if v := c.Query("from"); v != "" {
		if from, ok = parseDateFlexible(v); !ok {
			badRequest(c, "Invalid from date")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, ok = parseDateFlexible(v); !ok {
			badRequest(c, "Invalid to date")
			return
		}
	}

	tasks, err := h.tasks.ListCalendarTasks(c.Request.Context(), userID, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks), "from": from, "to": to})
}
