package models

import "time"

// BaseModel is shared by every entity. Rows are never hard-deleted; IsActive
// is the soft-delete flag and a deactivated row is treated as absent by the
// resolver.
type BaseModel struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	IsActive  bool `gorm:"not null;default:true;index"`
}
