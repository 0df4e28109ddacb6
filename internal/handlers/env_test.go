package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kollab-api/internal/auth"
	"kollab-api/internal/autoupdate"
	"kollab-api/internal/mailer"
	"kollab-api/internal/middleware"
	"kollab-api/internal/profiles"
	"kollab-api/internal/realtime"
	"kollab-api/internal/repository"
	"kollab-api/internal/services"
	"kollab-api/internal/summary"
	"kollab-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSummarizer struct {
	text string
	err  error
	got  summary.Input
}

func (s *stubSummarizer) Summarize(_ context.Context, in summary.Input) (string, error) {
	s.got = in
	return s.text, s.err
}

type testEnv struct {
	t          *testing.T
	router     *gin.Engine
	tokens     *auth.Tokens
	identity   *auth.ProviderVerifier
	store      *repository.Store
	hub        *realtime.Hub
	summarizer *stubSummarizer
	clock      *testutil.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	log := zaptest.NewLogger(t).Sugar()
	clock := testutil.NewClock(time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC))
	store := repository.NewStore(db)
	hub := realtime.NewHub()
	resolver := profiles.NewResolver(store, log, profiles.Options{Clock: clock.Now})
	deps := services.Deps{Store: store, Events: hub, Now: clock.Now, Log: log}
	sum := &stubSummarizer{text: "All on track."}
	tokens := auth.NewTokens("test-secret", "kollab-api", "kollab-web")
	identity := auth.NewProviderVerifier("provider-secret", "https://id.kollab.test")

	h := New(Options{
		Workflows:  services.NewWorkflowService(deps),
		Tasks:      services.NewTaskService(deps, resolver),
		Accounts:   services.NewAccountService(deps, resolver),
		Profiles:   resolver,
		Summarizer: sum,
		Dispatcher: autoupdate.NewDispatcher(store, sum, mailer.NewLogMailer(log), "updates@kollab.test", clock.Now, log),
		Hub:        hub,
		Tokens:     tokens,
		Identity:   identity,
		Log:        log,
	})

	r := gin.New()
	r.POST("/api/login", h.Login)
	api := r.Group("/api", middleware.JWTAuth(tokens))
	api.GET("/users", h.GetUsers)
	api.GET("/users/me", h.GetMe)
	api.GET("/templates", h.ListTemplates)
	api.GET("/workflows", h.ListWorkflows)
	api.POST("/workflows", h.CreateWorkflow)
	api.GET("/workflows/:id", h.GetWorkflow)
	api.PATCH("/workflows/:id", h.RenameWorkflow)
	api.DELETE("/workflows/:id", h.DeleteWorkflow)
	api.GET("/workflows/:id/tasks", h.ListWorkflowTasks)
	api.POST("/workflows/:id/columns", h.AddColumn)
	api.PATCH("/workflows/:id/columns/:columnId", h.RenameColumn)
	api.DELETE("/workflows/:id/columns/:columnId", h.DeleteColumn)
	api.PUT("/workflows/:id/auto-update", h.UpdateAutoUpdate)
	api.POST("/workflows/:id/summary", h.GenerateSummary)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/:id", h.GetTaskByID)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.POST("/tasks/:id/move", h.MoveTask)
	api.POST("/tasks/:id/toggle-complete", h.ToggleTaskCompleted)
	api.POST("/tasks/:id/archive", h.ArchiveTask)
	api.POST("/tasks/:id/unarchive", h.UnarchiveTask)
	api.POST("/tasks/:id/subtasks", h.AddSubtask)
	api.PATCH("/tasks/:id/subtasks/:subtaskId", h.ToggleSubtask)
	api.DELETE("/tasks/:id/subtasks/:subtaskId", h.DeleteSubtask)
	api.POST("/tasks/:id/comments", h.AddComment)
	api.GET("/calendar", h.ListCalendarTasks)
	api.GET("/ws", h.WebSocket)
	r.POST("/internal/auto-updates/run", h.RunAutoUpdates)

	return &testEnv{t: t, router: r, tokens: tokens, identity: identity, store: store, hub: hub, summarizer: sum, clock: clock}
}

func (e *testEnv) token(userID string) string {
	e.t.Helper()
	tok, err := e.tokens.Generate(userID, "")
	require.NoError(e.t, err)
	return tok
}

// idToken signs an identity token the way the sign-in provider would.
func (e *testEnv) idToken(id auth.Identity) string {
	e.t.Helper()
	tok, err := e.identity.SignIdentity(id, time.Hour)
	require.NoError(e.t, err)
	return tok
}

// do sends body as JSON with userID's token (none when userID is empty).
func (e *testEnv) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type workflowResponse struct {
	Workflow struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Columns []struct {
			ID      string   `json:"id"`
			Name    string   `json:"name"`
			TaskIDs []string `json:"taskIds"`
		} `json:"columns"`
	} `json:"workflow"`
	Tasks []taskResponse `json:"tasks"`
}

type taskResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ColumnID   string     `json:"columnId"`
	OwnerID    string     `json:"ownerId"`
	IsArchived bool       `json:"isArchived"`
	ArchivedAt *time.Time `json:"archivedAt"`
	DueDate    *time.Time `json:"dueDate"`
	Comments   []struct {
		UserName string `json:"userName"`
		Text     string `json:"text"`
	} `json:"comments"`
	Subtasks []struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	} `json:"subtasks"`
}

func (e *testEnv) createWorkflow(userID, template string) workflowResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/workflows", userID, gin.H{"name": "Board", "template": template})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[workflowResponse](e.t, w)
}

func (e *testEnv) createTask(userID, workflowID, columnID, title string) taskResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/tasks", userID, gin.H{"workflowId": workflowID, "columnId": columnID, "title": title})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[taskResponse](e.t, w)
}
