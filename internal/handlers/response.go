package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monzter50/api-gamification-finances/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, err error) {
	c.JSON(apierr.StatusOf(err), ErrorEnvelope{
		Error: APIError{
			Message: err.Error(),
			Code:    apierr.CodeOf(err),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
