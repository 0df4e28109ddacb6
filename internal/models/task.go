package models

import (
	"time"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Subtask is a checklist item owned by its parent task.
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Comment is append-only. UserName and UserAvatar are captured when the
// comment is posted and are not refreshed afterwards.
type Comment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Task represents a card on a workflow. ColumnID is the task's status.
// OwnerID is copied from the workflow when the task is created.
type Task struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Title        string       `json:"title" gorm:"not null"`
	Description  string       `json:"description,omitempty"`
	Priority     TaskPriority `json:"priority" gorm:"default:'medium'"`
	DueDate      *time.Time   `json:"dueDate,omitempty" gorm:"column:due_date"`
	WorkflowID   string       `json:"workflowId" gorm:"column:workflow_id;index;not null"`
	ColumnID     string       `json:"columnId" gorm:"column:column_id"`
	CreatorID    string       `json:"creatorId" gorm:"column:creator_id"`
	OwnerID      string       `json:"ownerId" gorm:"column:owner_id;index"`
	IsCompleted  bool         `json:"isCompleted"`
	IsBillable   bool         `json:"isBillable"`
	IsArchived   bool         `json:"isArchived" gorm:"index"`
	ClientName   string       `json:"clientName,omitempty"`
	Deliverables []string     `json:"deliverables" gorm:"serializer:json"`
	Subtasks     []Subtask    `json:"subtasks" gorm:"serializer:json"`
	Comments     []Comment    `json:"comments" gorm:"serializer:json"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	ArchivedAt   *time.Time   `json:"archivedAt,omitempty"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
