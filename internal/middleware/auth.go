package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/promptstack-dev/promptstack/db"
	"github.com/promptstack-dev/promptstack/internal/auth"
	"github.com/promptstack-dev/promptstack/internal/models"
	"github.com/promptstack-dev/promptstack/internal/types"
)

type AuthenticatedUser struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			abortUnauthorized(ctx, "Authorization token is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(ctx, "Authorization header format must be Bearer {token}")
			return
		}

		tokenString := parts[1]

		token, err := auth.VerifyJWT(tokenString)

		if err != nil || !token.Valid {
			abortUnauthorized(ctx, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)

		if !ok {
			abortUnauthorized(ctx, "Invalid token claims")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)

		if !ok {
			abortUnauthorized(ctx, "Invalid user ID in token claims")
			return
		}

		userID := uint(userIDFloat)

		var user models.User

		if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			abortUnauthorized(ctx, "User not found")
			return
		}

		// A deactivated account keeps its rows but its tokens stop resolving.
		if !user.IsActive {
			abortUnauthorized(ctx, "Account is deactivated")
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		})
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
		Success: false,
		Error:   &types.APIError{Message: message},
	})
}
