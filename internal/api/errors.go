package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"team-portal/internal/models"
)

// writeError maps service errors to status codes. Unknown errors are logged
// and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	code, msg := h.resolveError(c, err)
	c.JSON(code, gin.H{"error": msg})
}

func (h *Handler) resolveError(c *gin.Context, err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case models.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case models.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case models.IsConflict(err):
		return http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, models.ErrAccountInactive):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, err.Error()
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
}
