package models

import "time"

// User represents a player identified by an external identity provider.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProviderID string    `gorm:"size:255;uniqueIndex;not null" json:"provider_id"`
	Provider   string    `gorm:"size:64;not null" json:"provider"`
	Email      string    `gorm:"size:255;not null" json:"email"`
	Username   string    `gorm:"size:255" json:"username"`
	ProfilePic string    `gorm:"type:text" json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
