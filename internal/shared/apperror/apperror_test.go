package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-attendance/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error in chain", func(t *testing.T) {
		err := fmt.Errorf("check-in: %w", apperror.New(apperror.CodeDuplicateIntent, "already checked in", http.StatusConflict))

		httpErr := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, apperror.CodeDuplicateIntent, httpErr.Code)
		assert.Equal(t, "already checked in", httpErr.Message)
		assert.Nil(t, httpErr.Details)
	})

	t.Run("wrapped cause becomes details", func(t *testing.T) {
		err := apperror.Wrap(errors.New("bad pem"), apperror.CodeInvalidInput, "invalid public key", http.StatusBadRequest)

		httpErr := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "bad pem", httpErr.Details)
	})

	t.Run("plain error is internal", func(t *testing.T) {
		httpErr := apperror.ToHTTP(errors.New("connection refused"))

		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, apperror.CodeInternalError, httpErr.Code)
		assert.NotContains(t, httpErr.Message, "connection refused")
	})
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, apperror.Wrap(nil, apperror.CodeInternalError, "x", 500))
}
