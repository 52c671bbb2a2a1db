package attendanceerrors

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
	ErrEventNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance event not found",
		http.StatusNotFound,
	)
	ErrEventSuperseded = apperror.New(
		apperror.CodeInvalidState,
		"Attendance event was already corrected or deleted",
		http.StatusConflict,
	)
	ErrDuplicateIntent = apperror.New(
		apperror.CodeDuplicateIntent,
		"Already checked in; check out first",
		http.StatusConflict,
	)
	ErrNoOpenCheckIn = apperror.New(
		apperror.CodeInvalidState,
		"No open check-in found for this day",
		http.StatusConflict,
	)
	ErrConsecutiveCheckOut = apperror.New(
		apperror.CodeInvalidState,
		"Two consecutive check-outs are not allowed",
		http.StatusConflict,
	)
	ErrPayrollLocked = apperror.New(
		apperror.CodeInvalidState,
		"Payroll for this month is locked; unlock it before changing attendance",
		http.StatusConflict,
	)
	ErrMessageMismatch = apperror.New(
		apperror.CodeTrustFailure,
		"Signed data does not match today's expected message",
		http.StatusForbidden,
	)
	ErrSignatureInvalid = apperror.New(
		apperror.CodeTrustFailure,
		"Signature verification failed",
		http.StatusForbidden,
	)
	ErrDeviceNotBound = apperror.New(
		apperror.CodeTrustFailure,
		"No device is registered for this employee",
		http.StatusForbidden,
	)
	ErrUnsignedEmployeeEvent = apperror.New(
		apperror.CodeTrustFailure,
		"Employee events must carry a verified signature",
		http.StatusForbidden,
	)
	ErrFutureTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"timestamp cannot be in the future",
		http.StatusBadRequest,
	)
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"timestamp must be RFC3339",
		http.StatusBadRequest,
	)
	ErrInvalidIntent = apperror.New(
		apperror.CodeInvalidInput,
		"intent must be check-in or check-out",
		http.StatusBadRequest,
	)
	ErrNothingToCorrect = apperror.New(
		apperror.CodeInvalidInput,
		"a correction must change the intent or the timestamp",
		http.StatusBadRequest,
	)
)
