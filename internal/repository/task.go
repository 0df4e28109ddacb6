package repository

import (
	"context"

	"kollab-api/internal/models"
)

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err, "task")
	}
	return &t, nil
}

// ListTasks returns the workflow's tasks that match the archived flag,
// oldest first.
func (s *Store) ListTasks(ctx context.Context, workflowID string, archived bool) ([]models.Task, error) {
	var out []models.Task
	err := s.db.WithContext(ctx).
		Where("workflow_id = ? AND is_archived = ?", workflowID, archived).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	return out, nil
}

// ListDatedTasksByOwner returns non-archived tasks owned by ownerID that carry
// a due date. It relies on the denormalized task owner id.
func (s *Store) ListDatedTasksByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	var out []models.Task
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND is_archived = ? AND due_date IS NOT NULL", ownerID, false).
		Find(&out).Error
	if err != nil {
		return nil, wrap("list dated tasks", err)
	}
	return out, nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return wrap("create task", err)
	}
	return nil
}

// CreateTasks inserts all tasks with one statement.
func (s *Store) CreateTasks(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&tasks).Error; err != nil {
		return wrap("create tasks", err)
	}
	return nil
}

func (s *Store) SaveTask(ctx context.Context, t *models.Task) error {
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return wrap("save task", err)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return wrap("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete task", ErrNotFound)
	}
	return nil
}
