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

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func CreateProject(ctx *gin.Context) {
	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	project, err := services.CreateProject(db.DB, userID, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusCreated, types.NewProjectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	includeInactive := ctx.Query("include_inactive") == "true"

	projects, err := services.ListProjects(db.DB, userID, includeInactive)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, types.NewProjectResponse(project))
	}

	utils.RespondList(ctx, response, len(response))
}

func GetProject(ctx *gin.Context) {
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

	utils.RespondData(ctx, http.StatusOK, types.NewProjectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
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

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	project, err := services.UpdateProject(db.DB, userID, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewProjectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
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

	project, err := services.DeleteProject(db.DB, userID, projectID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.NewProjectResponse(project))
}
