package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/dispatch/internal/errs"
	"github.com/psds-microservice/dispatch/internal/model"
)

// CallerHeader — id оператора, полученный при входе (POST /api/v1/login).
const CallerHeader = "X-Caller-ID"

const callerKey = "caller"

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// RequireCaller определяет оператора по заголовку X-Caller-ID.
func RequireCaller(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(CallerHeader), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + CallerHeader})
			return
		}
		u, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, errs.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown caller"})
				return
			}
			respondError(c, err)
			return
		}
		c.Set(callerKey, *u)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !callerFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) model.User {
	if v, ok := c.Get(callerKey); ok {
		if u, ok := v.(model.User); ok {
			return u
		}
	}
	return model.User{}
}
