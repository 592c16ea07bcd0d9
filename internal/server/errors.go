package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncheta/ncheta/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusCode(err error) int {
	switch {
	case apperror.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrNotSignedIn), errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperror.IsRemote(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: apperror.Message(err)})
}

// writeSessionError reports an error state published by a session. The
// session has already turned the failure into a message.
func writeSessionError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, apperror.NewValidation("body", "Invalid request body: %s", err.Error()))
		return false
	}
	return true
}
