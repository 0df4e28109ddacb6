package repository

import (
	"context"
	"time"

	"kollab-api/internal/models"

	"gorm.io/gorm"
)

func (s *Store) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var w models.Workflow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, notFound(err, "workflow")
	}
	return &w, nil
}

func (s *Store) ListWorkflowsByOwner(ctx context.Context, ownerID string) ([]models.Workflow, error) {
	var out []models.Workflow
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, wrap("list workflows", err)
	}
	return out, nil
}

func (s *Store) CreateWorkflow(ctx context.Context, w *models.Workflow) error {
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return wrap("create workflow", err)
	}
	return nil
}

// SaveWorkflow writes every field of w, including its column layout.
func (s *Store) SaveWorkflow(ctx context.Context, w *models.Workflow) error {
	if err := s.db.WithContext(ctx).Save(w).Error; err != nil {
		return wrap("save workflow", err)
	}
	return nil
}

// DeleteWorkflowCascade removes the workflow and every task that references
// it. Call it inside Transaction so both deletes share one commit.
func (s *Store) DeleteWorkflowCascade(ctx context.Context, id string) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Workflow{})
	if res.Error != nil {
		return 0, wrap("delete workflow", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, wrap("delete workflow", ErrNotFound)
	}

	res = s.db.WithContext(ctx).Where("workflow_id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return 0, wrap("delete workflow tasks", res.Error)
	}
	return res.RowsAffected, nil
}

// ListAutoUpdateCandidates returns every workflow with automated client
// updates switched on. Due-date filtering happens in the caller.
func (s *Store) ListAutoUpdateCandidates(ctx context.Context) ([]models.Workflow, error) {
	var out []models.Workflow
	err := s.db.WithContext(ctx).
		Where("auto_update_enabled = ?", true).
		Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, wrap("list auto-update workflows", err)
	}
	return out, nil
}

// RecordAutoUpdateSent stores a confirmed send and the next send time in a
// single update. The write only applies while the stored next-send time still
// equals expectedNext; otherwise another pass already recorded this send and
// ErrConflict is returned.
func (s *Store) RecordAutoUpdateSent(ctx context.Context, workflowID string, expectedNext, sentAt, next time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var w models.Workflow
		if err := tx.Where("id = ?", workflowID).First(&w).Error; err != nil {
			return notFound(err, "workflow")
		}
		if w.AutoUpdateNextSend == nil || !w.AutoUpdateNextSend.Equal(expectedNext) {
			return wrap("record auto-update", ErrConflict)
		}
		err := tx.Model(&models.Workflow{}).
			Where("id = ?", workflowID).
			Updates(map[string]any{
				"auto_update_last_sent": sentAt,
				"auto_update_next_send": next,
				"updated_at":            sentAt,
			}).Error
		if err != nil {
			return wrap("record auto-update", err)
		}
		return nil
	})
}
