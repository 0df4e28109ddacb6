package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kollab-api/internal/models"
	"kollab-api/internal/realtime"
	"kollab-api/internal/repository"
)

// ProfileLookup resolves comment authors. It returns (nil, nil) for unknown users.
type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
}

type TaskService struct {
	Deps
	profiles ProfileLookup
}

func NewTaskService(deps Deps, profiles ProfileLookup) *TaskService {
	return &TaskService{Deps: deps.withDefaults(), profiles: profiles}
}

// newTask fills the fields every task starts with. OwnerID is copied from
// the workflow and never revisited.
func newTask(id string, w *models.Workflow, creatorID, columnID string, now time.Time) models.Task {
	return models.Task{
		ID:           id,
		Priority:     models.PriorityMedium,
		WorkflowID:   w.ID,
		ColumnID:     columnID,
		CreatorID:    creatorID,
		OwnerID:      w.OwnerID,
		Deliverables: []string{},
		Subtasks:     []models.Subtask{},
		Comments:     []models.Comment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type CreateTaskInput struct {
	WorkflowID   string
	ColumnID     string // empty means the first column
	Title        string
	Description  string
	Priority     models.TaskPriority
	DueDate      *time.Time
	ClientName   string
	IsBillable   bool
	Deliverables []string
}

// CreateTask inserts the task and appends its id to the target column in the
// same transaction, so the task is never visible outside a column.
func (s *TaskService) CreateTask(ctx context.Context, userID string, in CreateTaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("title is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, invalid("unknown priority %q", in.Priority)
	}

	var task models.Task
	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		w, err := ownedWorkflow(ctx, tx, userID, in.WorkflowID)
		if err != nil {
			return err
		}
		if len(w.Columns) == 0 {
			return invalid("workflow %s has no columns", w.ID)
		}
		ci := 0
		if in.ColumnID != "" {
			if ci = w.ColumnIndex(in.ColumnID); ci < 0 {
				return invalid("column %s does not belong to workflow %s", in.ColumnID, w.ID)
			}
		}

		now := s.Now().UTC()
		task = newTask(s.NewID(), w, userID, w.Columns[ci].ID, now)
		task.Title = in.Title
		task.Description = in.Description
		task.Priority = in.Priority
		task.DueDate = in.DueDate
		task.ClientName = in.ClientName
		task.IsBillable = in.IsBillable
		if in.Deliverables != nil {
			task.Deliverables = in.Deliverables
		}

		if err := tx.CreateTask(ctx, &task); err != nil {
			return err
		}
		w.Columns[ci].TaskIDs = append(w.Columns[ci].TaskIDs, task.ID)
		w.UpdatedAt = now
		return tx.SaveWorkflow(ctx, w)
	})
	if err != nil {
		return nil, classify(err)
	}

	s.Events.Publish(userID, realtime.Event{Type: realtime.TaskCreated, WorkflowID: task.WorkflowID, TaskID: task.ID, ColumnID: task.ColumnID})
	return &task, nil
}

// ownedTask loads a task and checks ownership through its workflow.
func ownedTask(ctx context.Context, st *repository.Store, userID, taskID string) (*models.Task, *models.Workflow, error) {
	t, err := st.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, classify(err)
	}
	w, err := ownedWorkflow(ctx, st, userID, t.WorkflowID)
	if err != nil {
		return nil, nil, err
	}
	return t, w, nil
}

// GetTask returns the task whether or not it is archived.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	t, _, err := ownedTask(ctx, s.Store, userID, taskID)
	return t, err
}

// ListActiveTasks returns the workflow's non-archived tasks.
func (s *TaskService) ListActiveTasks(ctx context.Context, userID, workflowID string) ([]models.Task, error) {
	return s.list(ctx, userID, workflowID, false)
}

func (s *TaskService) ListArchivedTasks(ctx context.Context, userID, workflowID string) ([]models.Task, error) {
	return s.list(ctx, userID, workflowID, true)
}

func (s *TaskService) list(ctx context.Context, userID, workflowID string, archived bool) ([]models.Task, error) {
	if _, err := ownedWorkflow(ctx, s.Store, userID, workflowID); err != nil {
		return nil, err
	}
	out, err := s.Store.ListTasks(ctx, workflowID, archived)
	return out, classify(err)
}

// ListCalendarTasks returns the user's active tasks due in [from, to),
// earliest first.
func (s *TaskService) ListCalendarTasks(ctx context.Context, userID string, from, to time.Time) ([]models.Task, error) {
	if !from.Before(to) {
		return nil, invalid("calendar range start must be before its end")
	}
	all, err := s.Store.ListDatedTasksByOwner(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if t.DueDate != nil && !t.DueDate.Before(from) && t.DueDate.Before(to) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

// TaskPatch carries the fields to overwrite; nil fields are left alone.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	ClientName   *string
	IsBillable   *bool
	IsCompleted  *bool
	Deliverables *[]string
}

func (p TaskPatch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title cannot be empty")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("unknown priority %q", *p.Priority)
	}
	return nil
}

// mutateTask runs fn on an owned task inside a transaction and saves it.
func (s *TaskService) mutateTask(ctx context.Context, userID, taskID, eventType string, fn func(t *models.Task, now time.Time) error) (*models.Task, error) {
	var out *models.Task
	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		t, _, err := ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		now := s.Now().UTC()
		if err := fn(t, now); err != nil {
			return err
		}
		t.UpdatedAt = now
		if err := tx.SaveTask(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	s.Events.Publish(userID, realtime.Event{Type: eventType, WorkflowID: out.WorkflowID, TaskID: out.ID, ColumnID: out.ColumnID})
	return out, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, p TaskPatch) (*models.Task, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return s.mutateTask(ctx, userID, taskID, realtime.TaskUpdated, func(t *models.Task, _ time.Time) error {
		if p.Title != nil {
			t.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.ClearDueDate {
			t.DueDate = nil
		} else if p.DueDate != nil {
			t.DueDate = p.DueDate
		}
		if p.ClientName != nil {
			t.ClientName = *p.ClientName
		}
		if p.IsBillable != nil {
			t.IsBillable = *p.IsBillable
		}
		if p.IsCompleted != nil {
			t.IsCompleted = *p.IsCompleted
		}
		if p.Deliverables != nil {
			t.Deliverables = *p.Deliverables
		}
		return nil
	})
}

func (s *TaskService) ToggleTaskCompleted(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.mutateTask(ctx, userID, taskID, realtime.TaskUpdated, func(t *models.Task, _ time.Time) error {
		t.IsCompleted = !t.IsCompleted
		return nil
	})
}

// ArchiveTask hides the task from active listings. It keeps its column.
func (s *TaskService) ArchiveTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.mutateTask(ctx, userID, taskID, realtime.TaskArchived, func(t *models.Task, now time.Time) error {
		t.IsArchived = true
		t.ArchivedAt = ptrTime(now)
		return nil
	})
}

func (s *TaskService) UnarchiveTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.mutateTask(ctx, userID, taskID, realtime.TaskUnarchived, func(t *models.Task, _ time.Time) error {
		t.IsArchived = false
		t.ArchivedAt = nil
		return nil
	})
}

// MoveTask takes the task out of its column and inserts it into destColumnID
// before targetTaskID, or at the end when the target is empty or not in that
// column. The column lists and the task's columnId are written in one
// transaction.
func (s *TaskService) MoveTask(ctx context.Context, userID, taskID, sourceColumnID, destColumnID, targetTaskID string) (*models.Task, error) {
	if destColumnID == "" {
		return nil, invalid("destination column is required")
	}

	var out *models.Task
	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		t, w, err := ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		if sourceColumnID != "" && t.ColumnID != sourceColumnID {
			return invalid("task %s is not in column %s", taskID, sourceColumnID)
		}
		dst := w.ColumnIndex(destColumnID)
		if dst < 0 {
			return invalid("column %s does not belong to workflow %s", destColumnID, w.ID)
		}

		fromCol, fromPos := removeTaskID(w, taskID)
		if targetTaskID == taskID && fromCol == dst {
			// dropped onto itself: keep its place
			ids := w.Columns[dst].TaskIDs
			w.Columns[dst].TaskIDs = append(ids[:fromPos], append([]string{taskID}, ids[fromPos:]...)...)
		} else {
			insertTaskID(&w.Columns[dst], taskID, targetTaskID)
		}

		now := s.Now().UTC()
		w.UpdatedAt = now
		t.ColumnID = destColumnID
		t.UpdatedAt = now
		if err := tx.SaveWorkflow(ctx, w); err != nil {
			return err
		}
		if err := tx.SaveTask(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	s.Events.Publish(userID, realtime.Event{Type: realtime.TaskMoved, WorkflowID: out.WorkflowID, TaskID: out.ID, ColumnID: out.ColumnID})
	return out, nil
}

// DeleteTask removes the task and its id from the column in one transaction.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	var workflowID string
	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		_, w, err := ownedTask(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		workflowID = w.ID
		removeTaskID(w, taskID)
		w.UpdatedAt = s.Now().UTC()
		if err := tx.SaveWorkflow(ctx, w); err != nil {
			return err
		}
		return tx.DeleteTask(ctx, taskID)
	})
	if err != nil {
		return classify(err)
	}
	s.Events.Publish(userID, realtime.Event{Type: realtime.TaskDeleted, WorkflowID: workflowID, TaskID: taskID})
	return nil
}

func (s *TaskService) AddSubtask(ctx context.Context, userID, taskID, text string) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("subtask text is required")
	}
	return s.mutateTask(ctx, userID, taskID, realtime.TaskUpdated, func(t *models.Task, _ time.Time) error {
		t.Subtasks = append(t.Subtasks, models.Subtask{ID: s.NewID(), Text: text})
		return nil
	})
}

func (s *TaskService) ToggleSubtask(ctx context.Context, userID, taskID, subtaskID string) (*models.Task, error) {
	return s.mutateTask(ctx, userID, taskID, realtime.TaskUpdated, func(t *models.Task, _ time.Time) error {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
				return nil
			}
		}
		return fmt.Errorf("subtask %s: %w", subtaskID, ErrNotFound)
	})
}

func (s *TaskService) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID string) (*models.Task, error) {
	return s.mutateTask(ctx, userID, taskID, realtime.TaskUpdated, func(t *models.Task, _ time.Time) error {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("subtask %s: %w", subtaskID, ErrNotFound)
	})
}

// AddComment appends a comment. The author's display name and avatar are
// copied in now and are not updated if the profile changes later.
func (s *TaskService) AddComment(ctx context.Context, userID, taskID, text string) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment text is required")
	}

	name, avatar := userID, ""
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.Log.Warnw("comment author lookup failed", "userId", userID, "error", err)
	} else if p != nil {
		if p.DisplayName != "" {
			name = p.DisplayName
		}
		avatar = p.AvatarURL
	}

	return s.mutateTask(ctx, userID, taskID, realtime.TaskCommentAdded, func(t *models.Task, now time.Time) error {
		t.Comments = append(t.Comments, models.Comment{
			ID:         s.NewID(),
			UserID:     userID,
			UserName:   name,
			UserAvatar: avatar,
			Text:       text,
			CreatedAt:  now,
		})
		return nil
	})
}
