package deviceerrors

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeForbidden,
		"Employee is not active",
		http.StatusForbidden,
	)
	ErrDeviceAlreadyBound = apperror.New(
		apperror.CodeInvalidState,
		"A device is already registered for this employee; ask an admin to reset it",
		http.StatusConflict,
	)
	ErrNoDeviceBound = apperror.New(
		apperror.CodeInvalidState,
		"No device is registered for this employee",
		http.StatusConflict,
	)
	ErrEmailMismatch = apperror.New(
		apperror.CodeTrustFailure,
		"Email does not match the employee record",
		http.StatusForbidden,
	)
	ErrInvalidPublicKey = apperror.New(
		apperror.CodeInvalidInput,
		"public_key must be a PEM encoded RSA-2048 SPKI key",
		http.StatusBadRequest,
	)
)
