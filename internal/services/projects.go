package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/models"
)

type CreateProjectInput struct {
	Name        string
	Description string
}

// UpdateProjectInput lists the only fields eligible for partial update; nil
// means "not provided".
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

func CreateProject(gdb *gorm.DB, ownerID uint, input CreateProjectInput) (models.Project, error) {
	name, err := validateName("Name", input.Name)
	if err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		BaseModel:   models.BaseModel{IsActive: true},
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     ownerID,
	}

	if err := gdb.Create(&project).Error; err != nil {
		return models.Project{}, apperrors.Wrap(apperrors.KindInternal, "Failed to create project", err)
	}

	return project, nil
}

func ListProjects(gdb *gorm.DB, ownerID uint, includeInactive bool) ([]models.Project, error) {
	query := gdb.Where("owner_id = ?", ownerID)

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var projects []models.Project

	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve projects", err)
	}

	return projects, nil
}

func GetProject(gdb *gorm.DB, ownerID uint, id uint) (models.Project, error) {
	project, err := resolveProject(gdb, id, ownerID)
	if err != nil {
		return models.Project{}, err
	}

	return *project, nil
}

func UpdateProject(gdb *gorm.DB, ownerID uint, id uint, input UpdateProjectInput) (models.Project, error) {
	var project models.Project

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveProject(tx, id, ownerID)
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

		if input.Description != nil {
			updates["description"] = strings.TrimSpace(*input.Description)
		}

		if len(updates) == 0 {
			return apperrors.New(apperrors.KindValidation, "No valid fields to update")
		}

		if err := tx.Model(resolved).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to update project", err)
		}

		project = *resolved
		return nil
	})

	if err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func DeleteProject(gdb *gorm.DB, ownerID uint, id uint) (models.Project, error) {
	var project models.Project

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveProject(tx, id, ownerID)
		if err != nil {
			return err
		}

		if err := tx.Model(resolved).Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to delete project", err)
		}

		project = *resolved
		return nil
	})

	if err != nil {
		return models.Project{}, err
	}

	return project, nil
}
