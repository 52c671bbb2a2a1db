package payrollerrors

import (
	"net/http"

	"go-attendance/internal/shared/apperror"
)

var (
	ErrInvalidMonth = apperror.New(
		apperror.CodeInvalidInput,
		"invalid month, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrFutureMonth = apperror.New(
		apperror.CodeInvalidInput,
		"payroll cannot be generated for a future month",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrNoEmployees = apperror.New(
		apperror.CodeInvalidState,
		"No active employees to generate payroll for",
		http.StatusConflict,
	)
	ErrAlreadyLocked = apperror.New(
		apperror.CodeAlreadyLocked,
		"Payroll for this month is already generated and locked",
		http.StatusConflict,
	)
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"Payroll report not found",
		http.StatusNotFound,
	)
	ErrNotLocked = apperror.New(
		apperror.CodeInvalidState,
		"Payroll report is not locked",
		http.StatusConflict,
	)
)
