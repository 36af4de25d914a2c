package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/models"
)

// The resolver is the single choke point for existence, soft-delete state and
// ownership. Missing, soft-deleted and foreign-owned rows are all reported as
// the same NotFound so callers cannot probe for resources across tenants; the
// deleted case is only distinguishable in the server log.
//
// Mutating operations call these inside their own transaction so the state
// they checked is the state they write against.

func resolveProject(tx *gorm.DB, id uint, ownerID uint) (*models.Project, error) {
	var project models.Project

	if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Project not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve project", err)
	}

	if !project.IsActive {
		log.Printf("project %d is soft-deleted, reporting not found", id)
		return nil, apperrors.New(apperrors.KindNotFound, "Project not found")
	}

	return &project, nil
}

func resolvePrompt(tx *gorm.DB, id uint, ownerID uint) (*models.Prompt, error) {
	var prompt models.Prompt

	if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Prompt not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve prompt", err)
	}

	if !prompt.IsActive {
		log.Printf("prompt %d is soft-deleted, reporting not found", id)
		return nil, apperrors.New(apperrors.KindNotFound, "Prompt not found")
	}

	return &prompt, nil
}

// resolvePromptPublic is the unauthenticated variant used by the public read
// path; it has no owner filter on purpose.
func resolvePromptPublic(tx *gorm.DB, id uint) (*models.Prompt, error) {
	var prompt models.Prompt

	if err := tx.Where("id = ?", id).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Prompt not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve prompt", err)
	}

	if !prompt.IsActive {
		log.Printf("prompt %d is soft-deleted, reporting not found", id)
		return nil, apperrors.New(apperrors.KindNotFound, "Prompt not found")
	}

	return &prompt, nil
}

func resolveVersion(tx *gorm.DB, id uint, ownerID uint) (*models.PromptVersion, error) {
	var version models.PromptVersion

	if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Version not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve version", err)
	}

	if !version.IsActive {
		log.Printf("version %d is soft-deleted, reporting not found", id)
		return nil, apperrors.New(apperrors.KindNotFound, "Version not found")
	}

	return &version, nil
}
