package routes

import (
	"net/http"
	"time"

	"kollab-api/internal/auth"
	"kollab-api/internal/handlers"
	"kollab-api/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the router.
type Options struct {
	Handler           *handlers.Handler
	Tokens            *auth.Tokens
	InternalAuthToken string
	CORSOrigins       []string
	Log               *zap.SugaredLogger
}

func SetupRoutes(o Options) *gin.Engine {
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(o.Log))
	ginRouter.Use(cors.New(corsConfig(o.CORSOrigins)))

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Kollab API is running",
		})
	})

	h := o.Handler

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuth(o.Tokens))
	{
		protectedRoutes.GET("/ws", h.WebSocket)

		protectedRoutes.GET("/users", h.GetUsers)
		protectedRoutes.GET("/users/me", h.GetMe)

		protectedRoutes.GET("/templates", h.ListTemplates)
		protectedRoutes.GET("/workflows", h.ListWorkflows)
		protectedRoutes.POST("/workflows", h.CreateWorkflow)
		protectedRoutes.GET("/workflows/:id", h.GetWorkflow)
		protectedRoutes.PATCH("/workflows/:id", h.RenameWorkflow)
		protectedRoutes.DELETE("/workflows/:id", h.DeleteWorkflow)
		protectedRoutes.GET("/workflows/:id/tasks", h.ListWorkflowTasks)
		protectedRoutes.POST("/workflows/:id/columns", h.AddColumn)
		protectedRoutes.PATCH("/workflows/:id/columns/:columnId", h.RenameColumn)
		protectedRoutes.DELETE("/workflows/:id/columns/:columnId", h.DeleteColumn)
		protectedRoutes.PUT("/workflows/:id/auto-update", h.UpdateAutoUpdate)
		protectedRoutes.POST("/workflows/:id/summary", h.GenerateSummary)

		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.PATCH("/tasks/:id", h.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)
		protectedRoutes.POST("/tasks/:id/move", h.MoveTask)
		protectedRoutes.POST("/tasks/:id/toggle-complete", h.ToggleTaskCompleted)
		protectedRoutes.POST("/tasks/:id/archive", h.ArchiveTask)
		protectedRoutes.POST("/tasks/:id/unarchive", h.UnarchiveTask)
		protectedRoutes.POST("/tasks/:id/subtasks", h.AddSubtask)
		protectedRoutes.PATCH("/tasks/:id/subtasks/:subtaskId", h.ToggleSubtask)
		protectedRoutes.DELETE("/tasks/:id/subtasks/:subtaskId", h.DeleteSubtask)
		protectedRoutes.POST("/tasks/:id/comments", h.AddComment)

		protectedRoutes.GET("/calendar", h.ListCalendarTasks)
	}

	// Machine-to-machine routes for the external scheduler
	internal := ginRouter.Group("/internal")
	internal.Use(middleware.InternalAuth(o.InternalAuthToken))
	{
		internal.POST("/auto-updates/run", h.RunAutoUpdates)
	}

	return ginRouter
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
