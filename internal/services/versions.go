package services

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/models"
)

// Version lifecycle: Created -> [Active <-> Inactive] -> SoftDeleted.
// A soft-deleted version resolves as not found, so it can never be updated
// back into the active state.
//
// Exclusivity is enforced in two layers. Inside each transaction, every other
// active sibling is deactivated before the target is activated, which covers
// sequential callers. Two overlapping transactions can still each observe the
// other's version as inactive; the partial unique index on
// (prompt_id) WHERE is_active_version AND is_active then aborts the second
// commit, which surfaces to the caller as a retryable Conflict.

type CreateVersionInput struct {
	Text       string
	MakeActive bool
	Metadata   datatypes.JSON
}

type UpdateVersionInput struct {
	Text            *string
	IsActiveVersion *bool
	IsActive        *bool
	Metadata        datatypes.JSON
}

func CreateVersion(gdb *gorm.DB, ownerID uint, promptID uint, input CreateVersionInput) (models.PromptVersion, error) {
	text, err := validateText(input.Text)
	if err != nil {
		return models.PromptVersion{}, err
	}

	var version models.PromptVersion

	err = gdb.Transaction(func(tx *gorm.DB) error {
		prompt, err := resolvePrompt(tx, promptID, ownerID)
		if err != nil {
			return err
		}

		// Sequence numbers count every version ever created for this prompt,
		// soft-deleted ones included. Deleting v2 never renumbers v3.
		var count int64
		if err := tx.Model(&models.PromptVersion{}).
			Where("owner_id = ? AND prompt_id = ?", ownerID, prompt.ID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to count versions", err)
		}

		sequence := count + 1

		if input.MakeActive {
			if err := deactivateSiblings(tx, prompt.ID, 0); err != nil {
				return err
			}
		}

		version = models.PromptVersion{
			BaseModel:       models.BaseModel{IsActive: true},
			OwnerID:         prompt.OwnerID,
			PromptID:        prompt.ID,
			Text:            text,
			SequenceLabel:   fmt.Sprintf("v%d", sequence),
			DisplayName:     fmt.Sprintf("Version %d", sequence),
			IsActiveVersion: input.MakeActive,
			Metadata:        input.Metadata,
		}

		if err := tx.Create(&version).Error; err != nil {
			return mapVersionWriteError(err)
		}

		return nil
	})

	if err != nil {
		return models.PromptVersion{}, err
	}

	return version, nil
}

// Activate makes the target the prompt's single active version.
func Activate(gdb *gorm.DB, ownerID uint, versionID uint) (models.PromptVersion, error) {
	var version models.PromptVersion

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveVersion(tx, versionID, ownerID)
		if err != nil {
			return err
		}

		if err := deactivateSiblings(tx, resolved.PromptID, resolved.ID); err != nil {
			return err
		}

		if err := tx.Model(resolved).Update("is_active_version", true).Error; err != nil {
			return mapVersionWriteError(err)
		}

		version = *resolved
		return nil
	})

	if err != nil {
		return models.PromptVersion{}, err
	}

	return version, nil
}

func UpdateVersion(gdb *gorm.DB, ownerID uint, versionID uint, input UpdateVersionInput) (models.PromptVersion, error) {
	var version models.PromptVersion

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveVersion(tx, versionID, ownerID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})

		if input.Text != nil {
			text, err := validateText(*input.Text)
			if err != nil {
				return err
			}
			updates["text"] = text
		}

		if input.Metadata != nil {
			updates["metadata"] = input.Metadata
		}

		if input.IsActiveVersion != nil {
			if *input.IsActiveVersion {
				if err := deactivateSiblings(tx, resolved.PromptID, resolved.ID); err != nil {
					return err
				}
			}
			updates["is_active_version"] = *input.IsActiveVersion
		}

		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}

		if len(updates) == 0 {
			return apperrors.New(apperrors.KindValidation, "No valid fields to update")
		}

		if err := tx.Model(resolved).Updates(updates).Error; err != nil {
			return mapVersionWriteError(err)
		}

		version = *resolved
		return nil
	})

	if err != nil {
		return models.PromptVersion{}, err
	}

	return version, nil
}

// SoftDeleteVersion removes the version from every read path. Deleting the
// active version does not promote a sibling; the prompt simply has no active
// version until one is activated explicitly.
func SoftDeleteVersion(gdb *gorm.DB, ownerID uint, versionID uint) (models.PromptVersion, error) {
	var version models.PromptVersion

	err := gdb.Transaction(func(tx *gorm.DB) error {
		resolved, err := resolveVersion(tx, versionID, ownerID)
		if err != nil {
			return err
		}

		if err := tx.Model(resolved).Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to delete version", err)
		}

		version = *resolved
		return nil
	})

	if err != nil {
		return models.PromptVersion{}, err
	}

	return version, nil
}

func ListVersions(gdb *gorm.DB, ownerID uint, promptID uint, includeInactive bool) ([]models.PromptVersion, error) {
	if _, err := resolvePrompt(gdb, promptID, ownerID); err != nil {
		return nil, err
	}

	query := gdb.Where("prompt_id = ? AND owner_id = ?", promptID, ownerID)

	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var versions []models.PromptVersion

	if err := query.Order("created_at DESC").Find(&versions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve versions", err)
	}

	return versions, nil
}

func GetVersion(gdb *gorm.DB, ownerID uint, id uint) (models.PromptVersion, error) {
	version, err := resolveVersion(gdb, id, ownerID)
	if err != nil {
		return models.PromptVersion{}, err
	}

	return *version, nil
}

// ActiveForPrompt is the unauthenticated public read: anyone who knows a
// prompt id may fetch its currently active version.
func ActiveForPrompt(gdb *gorm.DB, promptID uint) (models.PromptVersion, error) {
	if _, err := resolvePromptPublic(gdb, promptID); err != nil {
		return models.PromptVersion{}, err
	}

	var version models.PromptVersion

	err := gdb.Where("prompt_id = ? AND is_active_version = ? AND is_active = ?", promptID, true, true).
		First(&version).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PromptVersion{}, apperrors.New(apperrors.KindNotFound, "No active version for this prompt")
		}
		return models.PromptVersion{}, apperrors.Wrap(apperrors.KindInternal, "Failed to retrieve active version", err)
	}

	return version, nil
}

// deactivateSiblings clears the active flag on every other live version of
// the prompt. Run before activating so sequential callers never observe two
// active versions.
func deactivateSiblings(tx *gorm.DB, promptID uint, exceptID uint) error {
	err := tx.Model(&models.PromptVersion{}).
		Where("prompt_id = ? AND id <> ? AND is_active_version = ?", promptID, exceptID, true).
		Update("is_active_version", false).Error

	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Failed to deactivate versions", err)
	}

	return nil
}

func mapVersionWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(apperrors.KindConflict, "Another version was activated concurrently, please retry", err)
	}
	return apperrors.Wrap(apperrors.KindInternal, "Failed to save version", err)
}
