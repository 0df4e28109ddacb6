package services

import (
	"context"
	"net/mail"
	"strings"

	"kollab-api/internal/autoupdate"
	"kollab-api/internal/models"
	"kollab-api/internal/realtime"
	"kollab-api/internal/repository"
)

type WorkflowService struct {
	Deps
}

func NewWorkflowService(deps Deps) *WorkflowService {
	return &WorkflowService{Deps: deps.withDefaults()}
}

// CreateWorkflow builds the column layout from template and writes the
// workflow together with the template's seed tasks in one transaction.
func (s *WorkflowService) CreateWorkflow(ctx context.Context, ownerID, name, template string) (*models.Workflow, []models.Task, error) {
	name = strings.TrimSpace(name)
	if ownerID == "" {
		return nil, nil, invalid("ownerId is required")
	}
	if name == "" {
		return nil, nil, invalid("name is required")
	}

	tmpl := LookupTemplate(template)
	now := s.Now().UTC()
	w := &models.Workflow{
		ID:        s.NewID(),
		Name:      name,
		OwnerID:   ownerID,
		Template:  template,
		Columns:   make([]models.Column, 0, len(tmpl.Columns)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, colName := range tmpl.Columns {
		w.Columns = append(w.Columns, models.Column{ID: s.NewID(), Name: colName, TaskIDs: []string{}})
	}

	tasks := make([]models.Task, 0, len(tmpl.Tasks))
	for _, seed := range tmpl.Tasks {
		col := w.ColumnByName(seed.TargetColumnName)
		if col == nil {
			col = &w.Columns[0]
		}
		t := newTask(s.NewID(), w, ownerID, col.ID, now)
		t.Title = seed.Title
		t.Description = seed.Description
		t.Priority = seed.Priority
		t.IsBillable = seed.IsBillable
		for _, text := range seed.Subtasks {
			t.Subtasks = append(t.Subtasks, models.Subtask{ID: s.NewID(), Text: text})
		}
		col.TaskIDs = append(col.TaskIDs, t.ID)
		tasks = append(tasks, t)
	}

	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.CreateWorkflow(ctx, w); err != nil {
			return err
		}
		return tx.CreateTasks(ctx, tasks)
	})
	if err != nil {
		return nil, nil, classify(err)
	}

	s.Log.Infow("workflow created", "workflowId", w.ID, "ownerId", ownerID, "template", template, "seedTasks", len(tasks))
	s.Events.Publish(ownerID, realtime.Event{Type: realtime.WorkflowCreated, WorkflowID: w.ID})
	return w, tasks, nil
}

func (s *WorkflowService) GetWorkflow(ctx context.Context, userID, workflowID string) (*models.Workflow, error) {
	return ownedWorkflow(ctx, s.Store, userID, workflowID)
}

func (s *WorkflowService) ListWorkflows(ctx context.Context, userID string) ([]models.Workflow, error) {
	out, err := s.Store.ListWorkflowsByOwner(ctx, userID)
	return out, classify(err)
}

// mutate runs fn on the caller's workflow inside a transaction and saves it.
func (s *WorkflowService) mutate(ctx context.Context, userID, workflowID string, fn func(w *models.Workflow) error) (*models.Workflow, error) {
	var out *models.Workflow
	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		w, err := ownedWorkflow(ctx, tx, userID, workflowID)
		if err != nil {
			return err
		}
		if err := fn(w); err != nil {
			return err
		}
		w.UpdatedAt = s.Now().UTC()
		if err := tx.SaveWorkflow(ctx, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	s.Events.Publish(userID, realtime.Event{Type: realtime.WorkflowUpdated, WorkflowID: workflowID})
	return out, nil
}

func (s *WorkflowService) RenameWorkflow(ctx context.Context, userID, workflowID, name string) (*models.Workflow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	return s.mutate(ctx, userID, workflowID, func(w *models.Workflow) error {
		w.Name = name
		return nil
	})
}

func (s *WorkflowService) AddColumn(ctx context.Context, userID, workflowID, name string) (*models.Workflow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("column name is required")
	}
	return s.mutate(ctx, userID, workflowID, func(w *models.Workflow) error {
		w.Columns = append(w.Columns, models.Column{ID: s.NewID(), Name: name, TaskIDs: []string{}})
		return nil
	})
}

func (s *WorkflowService) RenameColumn(ctx context.Context, userID, workflowID, columnID, name string) (*models.Workflow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("column name is required")
	}
	return s.mutate(ctx, userID, workflowID, func(w *models.Workflow) error {
		i := w.ColumnIndex(columnID)
		if i < 0 {
			return invalid("column %s does not belong to workflow %s", columnID, workflowID)
		}
		w.Columns[i].Name = name
		return nil
	})
}

// DeleteColumn removes an empty column. A column still holding tasks, archived
// ones included, is rejected so no task is left without a column.
func (s *WorkflowService) DeleteColumn(ctx context.Context, userID, workflowID, columnID string) (*models.Workflow, error) {
	return s.mutate(ctx, userID, workflowID, func(w *models.Workflow) error {
		i := w.ColumnIndex(columnID)
		if i < 0 {
			return invalid("column %s does not belong to workflow %s", columnID, workflowID)
		}
		if len(w.Columns[i].TaskIDs) > 0 {
			return invalid("column %q still has %d tasks", w.Columns[i].Name, len(w.Columns[i].TaskIDs))
		}
		if len(w.Columns) == 1 {
			return invalid("a workflow needs at least one column")
		}
		w.Columns = append(w.Columns[:i], w.Columns[i+1:]...)
		return nil
	})
}

// DeleteWorkflow removes the workflow and all of its tasks in one transaction.
func (s *WorkflowService) DeleteWorkflow(ctx context.Context, userID, workflowID string) error {
	var removed int64
	err := s.Store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := ownedWorkflow(ctx, tx, userID, workflowID); err != nil {
			return err
		}
		n, err := tx.DeleteWorkflowCascade(ctx, workflowID)
		removed = n
		return err
	})
	if err != nil {
		return classify(err)
	}
	s.Log.Infow("workflow deleted", "workflowId", workflowID, "tasksDeleted", removed)
	s.Events.Publish(userID, realtime.Event{Type: realtime.WorkflowDeleted, WorkflowID: workflowID})
	return nil
}

// AutoUpdateSettings is the owner-editable part of the automated client update.
type AutoUpdateSettings struct {
	Enabled     bool
	Frequency   models.AutoUpdateFrequency
	ClientEmail string
}

// UpdateAutoUpdateSettings validates before writing. Enabling requires a
// client email and schedules the first send one interval from now; changing
// the frequency of an enabled workflow reschedules from now as well.
func (s *WorkflowService) UpdateAutoUpdateSettings(ctx context.Context, userID, workflowID string, in AutoUpdateSettings) (*models.Workflow, error) {
	in.ClientEmail = strings.TrimSpace(in.ClientEmail)
	if in.Frequency == "" {
		in.Frequency = models.FrequencyWeekly
	}
	if !in.Frequency.Valid() {
		return nil, invalid("frequency must be weekly or biweekly")
	}
	if in.Enabled && in.ClientEmail == "" {
		return nil, invalid("a client email is required to enable automated updates")
	}
	if in.ClientEmail != "" {
		if _, err := mail.ParseAddress(in.ClientEmail); err != nil {
			return nil, invalid("client email %q is not a valid address", in.ClientEmail)
		}
	}

	return s.mutate(ctx, userID, workflowID, func(w *models.Workflow) error {
		reschedule := in.Enabled && (!w.AutoUpdateEnabled || w.AutoUpdateFrequency != in.Frequency || w.AutoUpdateNextSend == nil)
		w.AutoUpdateEnabled = in.Enabled
		w.AutoUpdateFrequency = in.Frequency
		w.AutoUpdateClientEmail = in.ClientEmail
		switch {
		case reschedule:
			w.AutoUpdateNextSend = ptrTime(autoupdate.CalculateNextSendDate(in.Frequency, s.Now().UTC()))
		case !in.Enabled:
			w.AutoUpdateNextSend = nil
		}
		return nil
	})
}
