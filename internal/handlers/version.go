package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/promptstack-dev/promptstack/db"
	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/services"
	"github.com/promptstack-dev/promptstack/internal/types"
	"github.com/promptstack-dev/promptstack/internal/utils"
)

type CreateVersionRequest struct {
	Text       string         `json:"text" binding:"required"`
	MakeActive bool           `json:"make_active"`
	Metadata   datatypes.JSON `json:"metadata"`
}

type UpdateVersionRequest struct {
	Text            *string        `json:"text"`
	IsActiveVersion *bool          `json:"is_active_version"`
	IsActive        *bool          `json:"is_active"`
	Metadata        datatypes.JSON `json:"metadata"`
}

func CreateVersion(ctx *gin.Context) {
	var req CreateVersionRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	promptID, err := utils.GetIDParam(ctx, "prompt_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid prompt ID"))
		return
	}

	version, err := services.CreateVersion(db.DB, userID, promptID, services.CreateVersionInput{
		Text:       req.Text,
		MakeActive: req.MakeActive,
		Metadata:   req.Metadata,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if version.IsActiveVersion {
		BroadcastActiveVersionChanged(version.PromptID)
	}

	utils.RespondData(ctx, http.StatusCreated, types.NewVersionResponse(version))
}

func ListVersions(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	promptID, err := utils.GetIDParam(ctx, "prompt_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid prompt ID"))
		return
	}

	includeInactive := ctx.Query("include_inactive") == "true"

	versions, err := services.ListVersions(db.DB, userID, promptID, includeInactive)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	response := make([]types.VersionResponse, 0, len(versions))

	for _, version := range versions {
		response = append(response, types.NewVersionResponse(version))
	}

	utils.RespondList(ctx, response, len(response))
}

func GetVersion(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	versionID, err := utils.GetIDParam(ctx, "version_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid version ID"))
		return
	}

	version, err := services.GetVersion(db.DB, userID, versionID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewVersionResponse(version))
}

func UpdateVersion(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	versionID, err := utils.GetIDParam(ctx, "version_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid version ID"))
		return
	}

	var req UpdateVersionRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	version, err := services.UpdateVersion(db.DB, userID, versionID, services.UpdateVersionInput{
		Text:            req.Text,
		IsActiveVersion: req.IsActiveVersion,
		IsActive:        req.IsActive,
		Metadata:        req.Metadata,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if req.IsActiveVersion != nil || (req.IsActive != nil && !*req.IsActive) {
		BroadcastActiveVersionChanged(version.PromptID)
	}

	utils.RespondData(ctx, http.StatusOK, types.NewVersionResponse(version))
}

func DeleteVersion(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	versionID, err := utils.GetIDParam(ctx, "version_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid version ID"))
		return
	}

	version, err := services.SoftDeleteVersion(db.DB, userID, versionID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	// Deleting the active version leaves the prompt with none; watchers
	// should re-fetch.
	if version.IsActiveVersion {
		BroadcastActiveVersionChanged(version.PromptID)
	}

	utils.RespondData(ctx, http.StatusOK, types.NewVersionResponse(version))
}

// GetActiveVersion is the single unauthenticated endpoint: anyone with a
// prompt id may read whichever version is currently active.
func GetActiveVersion(ctx *gin.Context) {
	promptID, err := utils.GetIDParam(ctx, "prompt_id")

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Invalid prompt ID"))
		return
	}

	version, err := services.ActiveForPrompt(db.DB, promptID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewVersionResponse(version))
}
