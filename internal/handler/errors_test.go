package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/psds-microservice/dispatch/internal/database"
	"github.com/psds-microservice/dispatch/internal/errs"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.ErrRequestNotFound, http.StatusNotFound},
		{fmt.Errorf("get: %w", errs.ErrUserNotFound), http.StatusNotFound},
		{errs.ErrForbidden, http.StatusForbidden},
		{errs.ErrInvalidCredentials, http.StatusUnauthorized},
		{errs.ErrUserExists, http.StatusConflict},
		{fmt.Errorf("%w: \"x\"", errs.ErrInvalidDeadline), http.StatusBadRequest},
		{errs.ErrInvalidPeriod, http.StatusBadRequest},
		{errors.New("disk I/O error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapError(tc.err), tc.err.Error())
	}
}

func TestChanges(t *testing.T) {
	var nilChanges *Changes
	assert.Zero(t, nilChanges.Version())

	ch := &Changes{}
	ch.Bump(database.Signature{MaxID: 1, Count: 1})
	ch.Bump(database.Signature{MaxID: 2, Count: 2})
	assert.Equal(t, int64(2), ch.Version())
}
