package models

import "time"

// AutoUpdateFrequency controls how often a client progress summary is mailed.
type AutoUpdateFrequency string

const (
	FrequencyWeekly   AutoUpdateFrequency = "weekly"
	FrequencyBiweekly AutoUpdateFrequency = "biweekly"
)

// Valid reports whether f is one of the supported frequencies.
func (f AutoUpdateFrequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// Column is a named, ordered bucket of task IDs inside a workflow.
type Column struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TaskIDs []string `json:"taskIds"`
}

// Workflow is a kanban board owned by exactly one user. Columns live inside
// the workflow row the same way they would inside a single document.
type Workflow struct {
	ID                    string              `json:"id" gorm:"primaryKey"`
	Name                  string              `json:"name" gorm:"not null"`
	OwnerID               string              `json:"ownerId" gorm:"column:owner_id;index;not null"`
	Columns               []Column            `json:"columns" gorm:"serializer:json"`
	Template              string              `json:"template,omitempty"`
	AutoUpdateEnabled     bool                `json:"autoUpdateEnabled" gorm:"index"`
	AutoUpdateFrequency   AutoUpdateFrequency `json:"autoUpdateFrequency,omitempty"`
	AutoUpdateClientEmail string              `json:"autoUpdateClientEmail,omitempty"`
	AutoUpdateLastSent    *time.Time          `json:"autoUpdateLastSent,omitempty"`
	AutoUpdateNextSend    *time.Time          `json:"autoUpdateNextSend,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// TableName specifies the table name for Workflow Model
func (Workflow) TableName() string {
	return "workflows"
}

// ColumnIndex returns the position of the column with the given id, or -1.
func (w *Workflow) ColumnIndex(columnID string) int {
	for i := range w.Columns {
		if w.Columns[i].ID == columnID {
			return i
		}
	}
	return -1
}

// ColumnByName returns the first column whose name matches exactly.
func (w *Workflow) ColumnByName(name string) *Column {
	for i := range w.Columns {
		if w.Columns[i].Name == name {
			return &w.Columns[i]
		}
	}
	return nil
}
