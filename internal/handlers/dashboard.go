package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptstack-dev/promptstack/db"
	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/models"
	"github.com/promptstack-dev/promptstack/internal/services"
	"github.com/promptstack-dev/promptstack/internal/types"
	"github.com/promptstack-dev/promptstack/internal/utils"
)

type DashboardResponse struct {
	Project types.ProjectResponse `json:"project"`
	Summary PromptsSummary        `json:"prompts_summary"`
	Prompts []PromptSummary       `json:"prompts"`
}

type PromptsSummary struct {
	Total         int `json:"total"`
	WithActive    int `json:"with_active"`
	WithoutActive int `json:"without_active"`
}

type PromptSummary struct {
	ID              uint                   `json:"id"`
	Name            string                 `json:"name"`
	VersionCount    int64                  `json:"version_count"`
	DeletedVersions int64                  `json:"deleted_versions"`
	ActiveVersion   *types.VersionResponse `json:"active_version"`
}

// GetDashboard summarizes a project: its live prompts, how many versions each
// has accumulated, and which version is currently active.
func GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	projectID, err := utils.GetIDParam(ctx, "project_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid project ID"))
		return
	}

	project, err := services.GetProject(db.DB, userID, projectID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	prompts, err := services.ListPrompts(db.DB, userID, projectID, false)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	summaries := make([]PromptSummary, 0, len(prompts))
	var withActive, withoutActive int

	for _, prompt := range prompts {
		summary, err := buildPromptSummary(prompt)
		if err != nil {
			log.Printf("Failed to build summary for prompt %d: %v", prompt.ID, err)
			continue
		}

		summaries = append(summaries, summary)

		if summary.ActiveVersion != nil {
			withActive++
		} else {
			withoutActive++
		}
	}

	utils.RespondData(ctx, http.StatusOK, DashboardResponse{
		Project: types.NewProjectResponse(project),
		Summary: PromptsSummary{
			Total:         len(summaries),
			WithActive:    withActive,
			WithoutActive: withoutActive,
		},
		Prompts: summaries,
	})
}

func buildPromptSummary(prompt models.Prompt) (PromptSummary, error) {
	var total, deleted int64

	if err := db.DB.Model(&models.PromptVersion{}).
		Where("prompt_id = ?", prompt.ID).
		Count(&total).Error; err != nil {
		return PromptSummary{}, err
	}

	if err := db.DB.Model(&models.PromptVersion{}).
		Where("prompt_id = ? AND is_active = ?", prompt.ID, false).
		Count(&deleted).Error; err != nil {
		return PromptSummary{}, err
	}

	summary := PromptSummary{
		ID:              prompt.ID,
		Name:            prompt.Name,
		VersionCount:    total,
		DeletedVersions: deleted,
	}

	var active models.PromptVersion

	err := db.DB.Where("prompt_id = ? AND is_active_version = ? AND is_active = ?", prompt.ID, true, true).
		First(&active).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return PromptSummary{}, err
		}
		return summary, nil
	}

	response := types.NewVersionResponse(active)
	summary.ActiveVersion = &response

	return summary, nil
}
