// Package services enforces ownership and the workflow/task consistency
// rules on top of the repository.
package services

import (
	"context"
	"time"

	"kollab-api/internal/models"
	"kollab-api/internal/realtime"
	"kollab-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher receives an event after the change it describes has committed.
type Publisher interface {
	Publish(userID string, evt realtime.Event)
}

// Deps are shared by every service in this package.
type Deps struct {
	Store  *repository.Store
	Events Publisher
	Now    func() time.Time
	NewID  func() string
	Log    *zap.SugaredLogger
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Events == nil {
		d.Events = noopPublisher{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	return d
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, realtime.Event) {}

// ownedWorkflow loads a workflow and confirms userID owns it.
func ownedWorkflow(ctx context.Context, st *repository.Store, userID, workflowID string) (*models.Workflow, error) {
	if workflowID == "" {
		return nil, invalid("workflowId is required")
	}
	w, err := st.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, classify(err)
	}
	if w.OwnerID != userID {
		return nil, ErrPermissionDenied
	}
	return w, nil
}

// removeTaskID drops every occurrence of taskID from every column and
// returns the column index and position it was last found at (-1 if absent).
func removeTaskID(w *models.Workflow, taskID string) (int, int) {
	col, pos := -1, -1
	for ci := range w.Columns {
		ids := w.Columns[ci].TaskIDs[:0]
		for i, id := range w.Columns[ci].TaskIDs {
			if id == taskID {
				col, pos = ci, i
				continue
			}
			ids = append(ids, id)
		}
		w.Columns[ci].TaskIDs = ids
	}
	return col, pos
}

// insertTaskID places taskID before beforeID in the column, or at the end
// when beforeID is empty or not in the column.
func insertTaskID(c *models.Column, taskID, beforeID string) {
	if beforeID != "" {
		for i, id := range c.TaskIDs {
			if id == beforeID {
				c.TaskIDs = append(c.TaskIDs[:i], append([]string{taskID}, c.TaskIDs[i:]...)...)
				return
			}
		}
	}
	c.TaskIDs = append(c.TaskIDs, taskID)
}

func ptrTime(t time.Time) *time.Time { return &t }
