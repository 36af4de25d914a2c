package services

import (
	"gorm.io/gorm"

	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/models"
)

type CreatePromptInput struct {
	Name string
}

type UpdatePromptInput struct {
	Name *string
}

// CreatePrompt copies the owner from the parent project inside the same
// transaction, so a prompt can never outlive or contradict its project's
// ownership.
func CreatePrompt(gdb *gorm.DB, ownerID uint, projectID uint, input CreatePromptInput) (models.Prompt, error) {
	name, err := validateName("Name", input.Name)
	if err != nil {
		return models.Prompt{}, err
	}

	var prompt models.Prompt

	err = gdb.Transaction(func(tx *gorm.DB) error {
		project, err := resolveProject(tx, projectID, ownerID)
		if err != nil {
			return err
		}

		prompt = models.Prompt{
			BaseModel: models.BaseModel{IsActive: true},
			OwnerID:   project.OwnerID,
			ProjectID: project.ID,
			Name:      name,
		}

		if err := tx.Create(&prompt).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to create prompt", err)
		}

		return nil
	})

	if err != nil {
		return models.Prompt{}, err
	}

	return prompt, nil
}

func ListPrompts(gdb *gorm.DB, ownerID uint, projectID uint, includeInactive bool) ([]models.Prompt, error) {
	if _, err := resolveProject(gdb, projectID, ownerID); err != nil {
		return nil, err
	}

	query := gdb.Where("project_id = ? AND owner_id = ?", projectID, ownerID)

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var prompts []models.Prompt

	if err := query.Order("created_at DESC").Find(&prompts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve prompts", err)
	}

	return prompts, nil
}

func GetPrompt(gdb *gorm.DB, ownerID uint, id uint) (models.Prompt, error) {
	prompt, err := resolvePrompt(gdb, id, ownerID)
	if err != nil {
		return models.Prompt{}, err
	}

	return *prompt, nil
}

func UpdatePrompt(gdb *gorm.DB, ownerID uint, id uint, input UpdatePromptInput) (models.Prompt, error) {
	var prompt models.Prompt

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolvePrompt(tx, id, ownerID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})

		if input.Name != nil {
			name, err := validateName("Name", *input.Name)
			if err != nil {
				return err
			}
			updates["name"] = name
		}

		if len(updates) == 0 {
			return apperrors.New(apperrors.KindValidation, "No valid fields to update")
		}

		if err := tx.Model(resolved).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to update prompt", err)
		}

		prompt = *resolved
		return nil
	})

	if err != nil {
		return models.Prompt{}, err
	}

	return prompt, nil
}

func DeletePrompt(gdb *gorm.DB, ownerID uint, id uint) (models.Prompt, error) {
	var prompt models.Prompt

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolvePrompt(tx, id, ownerID)
		if err != nil {
			return err
		}

		if err := tx.Model(resolved).Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to delete prompt", err)
		}

		prompt = *resolved
		return nil
	})

	if err != nil {
		return models.Prompt{}, err
	}

	return prompt, nil
}
