package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-attendance/internal/payroll"
	payrollerrors "go-attendance/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakePayrollService struct {
	generateFn   func(ctx context.Context, actorID string, req payroll.GeneratePayrollRequest) (payroll.GenerateResponse, error)
	unlockFn     func(ctx context.Context, actorID string, req payroll.UnlockPayrollRequest) (payroll.UnlockResponse, error)
	resetFn      func(ctx context.Context, actorID string, req payroll.ResetPayrollRequest) (payroll.ResetResponse, error)
	getReportsFn func(ctx context.Context, month, employeeID string) ([]payroll.ReportResponse, error)
}

func (f *fakePayrollService) Generate(ctx context.Context, actorID string, req payroll.GeneratePayrollRequest) (payroll.GenerateResponse, error) {
	return f.generateFn(ctx, actorID, req)
}

func (f *fakePayrollService) Unlock(ctx context.Context, actorID string, req payroll.UnlockPayrollRequest) (payroll.UnlockResponse, error) {
	return f.unlockFn(ctx, actorID, req)
}

func (f *fakePayrollService) Reset(ctx context.Context, actorID string, req payroll.ResetPayrollRequest) (payroll.ResetResponse, error) {
	return f.resetFn(ctx, actorID, req)
}

func (f *fakePayrollService) GetReports(ctx context.Context, month, employeeID string) ([]payroll.ReportResponse, error) {
	return f.getReportsFn(ctx, month, employeeID)
}

func (f *fakePayrollService) IsLocked(ctx context.Context, employeeID string, month time.Time) (bool, error) {
	return false, nil
}

func TestPayrollHandler_Generate(t *testing.T) {
	actorID := uuid.New().String()
	employeeID := uuid.New().String()

	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, aid string, req payroll.GeneratePayrollRequest) (payroll.GenerateResponse, error) {
			assert.Equal(t, actorID, aid)
			assert.Equal(t, "2026-01", req.Month)
			assert.Equal(t, employeeID, req.EmployeeID)
			return payroll.GenerateResponse{Month: req.Month, Reports: []payroll.ReportResponse{{EmployeeID: employeeID, Status: payroll.StatusLocked}}}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"month":"2026-01","employee_id":"` + employeeID + `"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/generate", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", actorID)

	h.Generate(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_Generate_AlreadyLocked(t *testing.T) {
	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, actorID string, req payroll.GeneratePayrollRequest) (payroll.GenerateResponse, error) {
			return payroll.GenerateResponse{}, payrollerrors.ErrAlreadyLocked
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/generate", strings.NewReader(`{"month":"2026-01"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, "ALREADY_LOCKED", env.Error.Code)
	}
}

func TestPayrollHandler_Generate_PartialFailure(t *testing.T) {
	failedID := uuid.New().String()
	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, actorID string, req payroll.GeneratePayrollRequest) (payroll.GenerateResponse, error) {
			return payroll.GenerateResponse{
				Month:   req.Month,
				Reports: []payroll.ReportResponse{{EmployeeID: uuid.New().String(), Status: payroll.StatusLocked}},
				Failed:  []payroll.GenerateFailure{{EmployeeID: failedID, Code: "INTERNAL_ERROR"}},
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/generate", strings.NewReader(`{"month":"2026-01"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Generate(c)

	assert.Equal(t, http.StatusMultiStatus, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
	var data payroll.GenerateResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	if assert.Len(t, data.Failed, 1) {
		assert.Equal(t, failedID, data.Failed[0].EmployeeID)
	}
	assert.Len(t, data.Reports, 1)
}

func TestPayrollHandler_Unlock_RequiresReason(t *testing.T) {
	called := false
	svc := &fakePayrollService{
		unlockFn: func(ctx context.Context, actorID string, req payroll.UnlockPayrollRequest) (payroll.UnlockResponse, error) {
			called = true
			return payroll.UnlockResponse{}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/unlock", strings.NewReader(`{"month":"2026-01","reason":""}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Unlock(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestPayrollHandler_Reset_NotFound(t *testing.T) {
	svc := &fakePayrollService{
		resetFn: func(ctx context.Context, actorID string, req payroll.ResetPayrollRequest) (payroll.ResetResponse, error) {
			assert.Equal(t, "duplicate run", req.Reason)
			return payroll.ResetResponse{}, payrollerrors.ErrPayrollNotFound
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payrolls/reset", strings.NewReader(`{"month":"2026-01","reason":"duplicate run"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Reset(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayrollHandler_GetReports(t *testing.T) {
	employeeID := uuid.New().String()
	svc := &fakePayrollService{
		getReportsFn: func(ctx context.Context, month, eid string) ([]payroll.ReportResponse, error) {
			assert.Equal(t, "2026-01", month)
			assert.Equal(t, employeeID, eid)
			return []payroll.ReportResponse{{EmployeeID: eid, NetSalary: "24000.00"}}, nil
		},
	}

	h := payroll.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/payrolls?month=2026-01&employee_id="+employeeID, nil)

	h.GetReports(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	var got []payroll.ReportResponse
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "24000.00", got[0].NetSalary)
}
