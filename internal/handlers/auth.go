package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/promptstack-dev/promptstack/db"
	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/auth"
	"github.com/promptstack-dev/promptstack/internal/models"
	"github.com/promptstack-dev/promptstack/internal/types"
	"github.com/promptstack-dev/promptstack/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateMeRequest struct {
	DisplayName     string `json:"display_name"`
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,min=8"`
}

type AuthResponse struct {
	User  types.UserResponse `json:"user"`
	Token string             `json:"token"`
}

func Signup(ctx *gin.Context) {
	var req SignupRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err == nil {
		// Deliberately vague so signup cannot be used to enumerate accounts.
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Unable to create account"))
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	newUser := models.User{
		BaseModel:    models.BaseModel{IsActive: true},
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		// A concurrent signup with the same email lands here via the unique
		// index; keep the same vague message as the precheck.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Unable to create account"))
			return
		}
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Email)

	if err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	utils.RespondData(ctx, http.StatusCreated, AuthResponse{
		User: types.UserResponse{
			ID:          newUser.ID,
			Email:       newUser.Email,
			DisplayName: newUser.DisplayName,
		},
		Token: token,
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", req.Email).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Identical failure whether the email is unknown or the password
			// is wrong.
			utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "Invalid email or password"))
			return
		}
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(req.Password)); err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "Invalid email or password"))
		return
	}

	if !existingUser.IsActive {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "Account is deactivated"))
		return
	}

	token, err := auth.GenerateJWT(existingUser.ID, existingUser.Email)

	if err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	utils.RespondData(ctx, http.StatusOK, AuthResponse{
		User: types.UserResponse{
			ID:          existingUser.ID,
			Email:       existingUser.Email,
			DisplayName: existingUser.DisplayName,
		},
		Token: token,
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.UserResponse{
		ID:          currentUser.ID,
		Email:       currentUser.Email,
		DisplayName: currentUser.DisplayName,
	})
}

func UpdateMe(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	var dbUser models.User
	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	var req UpdateMeRequest
	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindValidation, "Invalid request", err))
		return
	}

	updates := make(map[string]interface{})

	if req.DisplayName != "" {
		updates["display_name"] = strings.TrimSpace(req.DisplayName)
	}

	if req.Email != "" {
		newEmail := strings.ToLower(strings.TrimSpace(req.Email))

		if newEmail != dbUser.Email {
			var existingUser models.User
			err := db.DB.Where("email = ? AND id != ?", newEmail, dbUser.ID).First(&existingUser).Error
			if err == nil {
				utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Email already in use"))
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
				return
			}
		}

		updates["email"] = newEmail
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Current password is required to change password"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Current password is incorrect"))
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
			return
		}

		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "No valid fields to update"))
		return
	}

	if err := db.DB.Model(&dbUser).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Email already in use"))
			return
		}
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	utils.RespondData(ctx, http.StatusOK, types.UserResponse{
		ID:          dbUser.ID,
		Email:       dbUser.Email,
		DisplayName: dbUser.DisplayName,
	})
}

// DeactivateMe soft-deactivates the account after password confirmation.
// Rows are kept; logins and token resolution stop working.
func DeactivateMe(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindUnauthenticated, "User not authenticated"))
		return
	}

	var dbUser models.User
	if err := db.DB.First(&dbUser, currentUser.ID).Error; err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.BindJSON(&req); err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Password is required to deactivate the account"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.Password)); err != nil {
		utils.RespondError(ctx, apperrors.New(apperrors.KindValidation, "Incorrect password"))
		return
	}

	if err := db.DB.Model(&dbUser).Update("is_active", false).Error; err != nil {
		utils.RespondError(ctx, apperrors.Wrap(apperrors.KindInternal, "Internal server error", err))
		return
	}

	log.Printf("account %d deactivated", dbUser.ID)

	utils.RespondMessage(ctx, http.StatusOK, "Account deactivated")
}
