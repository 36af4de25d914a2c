package types

import (
	"time"

	"gorm.io/datatypes"

	"github.com/promptstack-dev/promptstack/internal/models"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"` // populated outside production only
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type ProjectResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     uint      `json:"owner_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PromptResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	ProjectID uint      `json:"project_id"`
	OwnerID   uint      `json:"owner_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VersionResponse struct {
	ID              uint           `json:"id"`
	PromptID        uint           `json:"prompt_id"`
	OwnerID         uint           `json:"owner_id"`
	Text            string         `json:"text"`
	SequenceLabel   string         `json:"sequence_label"`
	DisplayName     string         `json:"display_name"`
	IsActiveVersion bool           `json:"is_active_version"`
	IsActive        bool           `json:"is_active"`
	Metadata        datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func NewProjectResponse(p models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewPromptResponse(p models.Prompt) PromptResponse {
	return PromptResponse{
		ID:        p.ID,
		Name:      p.Name,
		ProjectID: p.ProjectID,
		OwnerID:   p.OwnerID,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewVersionResponse(v models.PromptVersion) VersionResponse {
	return VersionResponse{
		ID:              v.ID,
		PromptID:        v.PromptID,
		OwnerID:         v.OwnerID,
		Text:            v.Text,
		SequenceLabel:   v.SequenceLabel,
		DisplayName:     v.DisplayName,
		IsActiveVersion: v.IsActiveVersion,
		IsActive:        v.IsActive,
		Metadata:        v.Metadata,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}
