package models

type User struct {
	BaseModel

	Email        string `gorm:"uniqueIndex;not null"` // stored lower-cased
	PasswordHash string `gorm:"not null"`
	DisplayName  string

	// Relationships
	Projects []Project       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Prompts  []Prompt        `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Versions []PromptVersion `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
