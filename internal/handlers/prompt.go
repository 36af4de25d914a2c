package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptstack-dev/promptstack/db"
	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/services"
	"github.com/promptstack-dev/promptstack/internal/types"
	"github.com/promptstack-dev/promptstack/internal/utils"
)

type CreatePromptRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdatePromptRequest struct {
	Name *string `json:"name"`
}

func CreatePrompt(ctx *gin.Context) {
	var req CreatePromptRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

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

	prompt, err := services.CreatePrompt(db.DB, userID, projectID, services.CreatePromptInput{
		Name: req.Name,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusCreated, types.NewPromptResponse(prompt))
}

func ListPrompts(ctx *gin.Context) {
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

	includeInactive := ctx.Query("include_inactive") == "true"

	prompts, err := services.ListPrompts(db.DB, userID, projectID, includeInactive)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	response := make([]types.PromptResponse, 0, len(prompts))

	for _, prompt := range prompts {
		response = append(response, types.NewPromptResponse(prompt))
	}

	utils.RespondList(ctx, response, len(response))
}

func GetPrompt(ctx *gin.Context) {
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

	prompt, err := services.GetPrompt(db.DB, userID, promptID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewPromptResponse(prompt))
}

func UpdatePrompt(ctx *gin.Context) {
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

	var req UpdatePromptRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	prompt, err := services.UpdatePrompt(db.DB, userID, promptID, services.UpdatePromptInput{
		Name: req.Name,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewPromptResponse(prompt))
}

func DeletePrompt(ctx *gin.Context) {
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

	prompt, err := services.DeletePrompt(db.DB, userID, promptID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewPromptResponse(prompt))
}
