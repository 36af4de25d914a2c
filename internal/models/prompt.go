package models

type Prompt struct {
	BaseModel

	// OwnerID is copied from the parent project at creation and re-checked on
	// every mutation; it is never updated afterwards.
	OwnerID   uint   `gorm:"not null;index"`
	ProjectID uint   `gorm:"not null;index"`
	Name      string `gorm:"not null"`

	// Relationships
	Owner    User            `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project  Project         `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Versions []PromptVersion `gorm:"foreignKey:PromptID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
