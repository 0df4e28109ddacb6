package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"kollab-api/internal/models"
	"kollab-api/internal/profiles"
	"kollab-api/internal/realtime"
	"kollab-api/internal/repository"
	"kollab-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ string, evt realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	store     *repository.Store
	clock     *testutil.Clock
	events    *recordingPublisher
	resolver  *profiles.Resolver
	workflows *WorkflowService
	tasks     *TaskService
	accounts  *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	log := zaptest.NewLogger(t).Sugar()
	store := repository.NewStore(db)
	clock := testutil.NewClock(time.Date(2025, 4, 14, 10, 0, 0, 0, time.UTC))
	events := &recordingPublisher{}
	resolver := profiles.NewResolver(store, log, profiles.Options{Clock: clock.Now})
	deps := Deps{Store: store, Events: events, Now: clock.Now, Log: log}

	return &fixture{
		db:        db,
		store:     store,
		clock:     clock,
		events:    events,
		resolver:  resolver,
		workflows: NewWorkflowService(deps),
		tasks:     NewTaskService(deps, resolver),
		accounts:  NewAccountService(deps, resolver),
	}
}

func (f *fixture) workflow(t *testing.T, owner, template string) *models.Workflow {
	t.Helper()
	w, _, err := f.workflows.CreateWorkflow(context.Background(), owner, "Board", template)
	require.NoError(t, err)
	return w
}

func (f *fixture) task(t *testing.T, owner, workflowID, columnID, title string) *models.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), owner, CreateTaskInput{
		WorkflowID: workflowID,
		ColumnID:   columnID,
		Title:      title,
	})
	require.NoError(t, err)
	return task
}

// requireConsistent checks that every id in a column's list is a task that
// claims that column, and every task of the workflow is listed exactly once.
func (f *fixture) requireConsistent(t *testing.T, workflowID string) {
	t.Helper()
	ctx := context.Background()
	w, err := f.store.GetWorkflow(ctx, workflowID)
	require.NoError(t, err)
	active, err := f.store.ListTasks(ctx, workflowID, false)
	require.NoError(t, err)
	archived, err := f.store.ListTasks(ctx, workflowID, true)
	require.NoError(t, err)

	byID := make(map[string]models.Task)
	for _, task := range append(active, archived...) {
		byID[task.ID] = task
	}

	listed := make(map[string]int)
	for _, col := range w.Columns {
		for _, id := range col.TaskIDs {
			task, ok := byID[id]
			require.True(t, ok, "column %s lists unknown task %s", col.Name, id)
			require.Equal(t, col.ID, task.ColumnID, "task %s listed in a column it does not claim", id)
			listed[id]++
		}
	}
	for id := range byID {
		require.Equal(t, 1, listed[id], "task %s must be listed in exactly one column", id)
	}
}

func columnNames(w *models.Workflow) []string {
	out := make([]string, len(w.Columns))
	for i, c := range w.Columns {
		out[i] = c.Name
	}
	return out
}
