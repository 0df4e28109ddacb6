package models

import "time"

// UserProfile is the identity supplied by the authentication provider.
// It is created on first login and upserted on every login after that.
type UserProfile struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email" gorm:"index"`
	AvatarURL   string    `json:"avatarUrl" gorm:"column:avatar_url"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for UserProfile Model
func (UserProfile) TableName() string {
	return "users"
}
