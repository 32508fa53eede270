package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/psds-microservice/dispatch/internal/errs"
)

// mapError переводит ошибку сервиса в HTTP-статус.
func mapError(err error) int {
	switch {
	case errors.Is(err, errs.ErrRequestNotFound), errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrPeriodNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrUserExists), errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	case errs.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError пишет ответ с ошибкой; необработанные ошибки уходят в c.Errors для журнала.
func respondError(c *gin.Context, err error) {
	code := mapError(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(code, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
