package models

import (
	"gorm.io/datatypes"
)

type PromptVersion struct {
	BaseModel

	OwnerID  uint   `gorm:"not null;index"`
	PromptID uint   `gorm:"not null;index"`
	Text     string `gorm:"type:text;not null"`

	// SequenceLabel ("v1", "v2", ...) and DisplayName ("Version 1", ...) are
	// assigned once at creation from the count of all prior versions for the
	// prompt, soft-deleted ones included, and never reassigned.
	SequenceLabel string `gorm:"not null"`
	DisplayName   string `gorm:"not null"`

	// IsActiveVersion marks the version served on the public read path. At
	// most one non-soft-deleted version per prompt may carry it; a partial
	// unique index created in db.MigrateDatabase enforces this.
	IsActiveVersion bool `gorm:"not null;default:false;index"`

	Metadata datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Owner  User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Prompt Prompt `gorm:"foreignKey:PromptID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
