package utils

import (
	"log"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/types"
)

func isProduction() bool {
	return os.Getenv("APP_ENV") == "production"
}

func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, types.APIResponse{Success: true, Data: data})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, types.APIResponse{Success: true, Message: message})
}

// RespondList includes the envelope's count field alongside the data.
func RespondList(ctx *gin.Context, data interface{}, count int) {
	ctx.JSON(http.StatusOK, types.APIResponse{Success: true, Data: data, Count: &count})
}

// RespondError translates a domain error into the envelope. Untyped errors
// are logged and reported as a generic internal failure; the stack is only
// attached outside production.
func RespondError(ctx *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	apiErr := &types.APIError{Message: apperrors.PublicMessage(err)}

	if !isProduction() {
		apiErr.Stack = string(debug.Stack())
	}

	ctx.JSON(status, types.APIResponse{Success: false, Error: apiErr})
}
