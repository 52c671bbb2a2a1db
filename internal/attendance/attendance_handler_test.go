package attendance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-attendance/internal/attendance"
	attendanceerrors "go-attendance/internal/attendance/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	checkInFn   func(ctx context.Context, employeeID string, req attendance.SignedSubmission) (attendance.EventResponse, error)
	checkOutFn  func(ctx context.Context, employeeID string, req attendance.SignedSubmission) (attendance.EventResponse, error)
	addManualFn func(ctx context.Context, adminID string, req attendance.ManualEventRequest) (attendance.EventResponse, error)
	correctFn   func(ctx context.Context, adminID, eventID string, req attendance.CorrectEventRequest) (attendance.EventResponse, error)
	deleteFn    func(ctx context.Context, adminID, eventID string, req attendance.DeleteEventRequest) (attendance.EventResponse, error)
	listDayFn   func(ctx context.Context, employeeID, date string) ([]attendance.EventResponse, error)
	calls       int
}

func (f *fakeService) CheckIn(ctx context.Context, employeeID string, req attendance.SignedSubmission) (attendance.EventResponse, error) {
	f.calls++
	return f.checkInFn(ctx, employeeID, req)
}
func (f *fakeService) CheckOut(ctx context.Context, employeeID string, req attendance.SignedSubmission) (attendance.EventResponse, error) {
	f.calls++
	return f.checkOutFn(ctx, employeeID, req)
}
func (f *fakeService) Record(ctx context.Context, cmd attendance.RecordCommand) (attendance.Event, error) {
	f.calls++
	return attendance.Event{}, nil
}
func (f *fakeService) AddManual(ctx context.Context, adminID string, req attendance.ManualEventRequest) (attendance.EventResponse, error) {
	f.calls++
	return f.addManualFn(ctx, adminID, req)
}
func (f *fakeService) Correct(ctx context.Context, adminID, eventID string, req attendance.CorrectEventRequest) (attendance.EventResponse, error) {
	f.calls++
	return f.correctFn(ctx, adminID, eventID, req)
}
func (f *fakeService) Delete(ctx context.Context, adminID, eventID string, req attendance.DeleteEventRequest) (attendance.EventResponse, error) {
	f.calls++
	return f.deleteFn(ctx, adminID, eventID, req)
}
func (f *fakeService) EventsForDay(ctx context.Context, employeeID string, date time.Time) ([]attendance.Event, error) {
	return nil, nil
}
func (f *fakeService) EventsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Event, error) {
	return nil, nil
}
func (f *fakeService) ListDay(ctx context.Context, employeeID, date string) ([]attendance.EventResponse, error) {
	f.calls++
	return f.listDayFn(ctx, employeeID, date)
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newJSONContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestHandler_CheckInAndCheckOut(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	svc := &fakeService{
		checkInFn: func(ctx context.Context, eid string, req attendance.SignedSubmission) (attendance.EventResponse, error) {
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, "c2ln", req.Signature)
			return attendance.EventResponse{ID: uuid.New().String(), EmployeeID: eid, Kind: "check-in"}, nil
		},
		checkOutFn: func(ctx context.Context, eid string, req attendance.SignedSubmission) (attendance.EventResponse, error) {
			return attendance.EventResponse{ID: uuid.New().String(), EmployeeID: eid, Kind: "check-out"}, nil
		},
	}
	h := attendance.NewHandler(svc)
	body := `{"signature":"c2ln","data_to_verify":"` + employeeID + `|2026-01-13|check-in"}`

	c, w := newJSONContext(http.MethodPost, "/attendances/check-in", body)
	c.Set("employee_id", employeeID)
	h.CheckIn(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeEnvelope(t, w).Ok)

	c2, w2 := newJSONContext(http.MethodPost, "/attendances/check-out", body)
	c2.Set("employee_id", employeeID)
	h.CheckOut(c2)
	assert.Equal(t, http.StatusCreated, w2.Code)
	assert.Contains(t, w2.Body.String(), `"kind":"check-out"`)
}

func TestHandler_CheckInRejectsBlankSignedFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing signature", body: `{"data_to_verify":"x|2026-01-13|check-in"}`},
		{name: "blank signature", body: `{"signature":"   ","data_to_verify":"x|2026-01-13|check-in"}`},
		{name: "blank data", body: `{"signature":"c2ln","data_to_verify":" "}`},
		{name: "latitude out of range", body: `{"signature":"c2ln","data_to_verify":"x","latitude":91}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			h := attendance.NewHandler(svc)
			c, w := newJSONContext(http.MethodPost, "/attendances/check-in", tt.body)

			h.CheckIn(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			if assert.NotNil(t, env.Error) {
				assert.Equal(t, "INVALID_INPUT", env.Error.Code)
			}
			assert.Zero(t, svc.calls)
		})
	}
}

func TestHandler_TrustFailuresAreForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, trustErr := range []error{
		attendanceerrors.ErrSignatureInvalid,
		attendanceerrors.ErrMessageMismatch,
		attendanceerrors.ErrDeviceNotBound,
	} {
		svc := &fakeService{
			checkInFn: func(ctx context.Context, eid string, req attendance.SignedSubmission) (attendance.EventResponse, error) {
				return attendance.EventResponse{}, trustErr
			},
		}
		h := attendance.NewHandler(svc)
		c, w := newJSONContext(http.MethodPost, "/attendances/check-in", `{"signature":"c2ln","data_to_verify":"x"}`)

		h.CheckIn(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w)
		if assert.NotNil(t, env.Error) {
			assert.Equal(t, "TRUST_FAILURE", env.Error.Code)
		}
	}
}

func TestHandler_AdminMutationsRequireReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	eventID := uuid.New().String()
	employeeID := uuid.New().String()

	svc := &fakeService{}
	h := attendance.NewHandler(svc)

	manual, w := newJSONContext(http.MethodPost, "/attendances/manual",
		`{"employee_id":"`+employeeID+`","intent":"check-in","timestamp":"2026-01-13T09:00:00+05:30"}`)
	h.AddManual(manual)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	correct, w := newJSONContext(http.MethodPost, "/attendances/"+eventID+"/correct", `{"timestamp":"2026-01-13T09:00:00+05:30","reason":"  "}`)
	correct.Params = gin.Params{{Key: "id", Value: eventID}}
	h.Correct(correct)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	del, w := newJSONContext(http.MethodDelete, "/attendances/"+eventID, `{}`)
	del.Params = gin.Params{{Key: "id", Value: eventID}}
	h.Delete(del)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		assert.Contains(t, env.Error.Message, "required")
	}

	assert.Zero(t, svc.calls)
}

func TestHandler_AdminMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	adminID := uuid.New().String()
	eventID := uuid.New().String()

	svc := &fakeService{
		correctFn: func(ctx context.Context, aid, id string, req attendance.CorrectEventRequest) (attendance.EventResponse, error) {
			assert.Equal(t, adminID, aid)
			assert.Equal(t, eventID, id)
			assert.Equal(t, "wrong time", req.Reason)
			return attendance.EventResponse{ID: uuid.New().String(), SupersedesID: &id}, nil
		},
		deleteFn: func(ctx context.Context, aid, id string, req attendance.DeleteEventRequest) (attendance.EventResponse, error) {
			return attendance.EventResponse{}, attendanceerrors.ErrPayrollLocked
		},
	}
	h := attendance.NewHandler(svc)

	correct, w := newJSONContext(http.MethodPost, "/attendances/"+eventID+"/correct", `{"intent":"check-out","reason":"wrong time"}`)
	correct.Params = gin.Params{{Key: "id", Value: eventID}}
	correct.Set("user_id", adminID)
	h.Correct(correct)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), eventID)

	del, w := newJSONContext(http.MethodDelete, "/attendances/"+eventID, `{"reason":"duplicate"}`)
	del.Params = gin.Params{{Key: "id", Value: eventID}}
	del.Set("user_id", adminID)
	h.Delete(del)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_ListDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()

	svc := &fakeService{
		listDayFn: func(ctx context.Context, eid, date string) ([]attendance.EventResponse, error) {
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, "2026-01-13", date)
			return []attendance.EventResponse{{ID: uuid.New().String()}, {ID: uuid.New().String()}}, nil
		},
	}
	h := attendance.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "employee_id", Value: employeeID}}
	c.Request = httptest.NewRequest(http.MethodGet, "/attendances/"+employeeID+"?date=2026-01-13", nil)
	h.ListDay(c)
	assert.Equal(t, http.StatusOK, w.Code)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Params = gin.Params{{Key: "employee_id", Value: employeeID}}
	c2.Request = httptest.NewRequest(http.MethodGet, "/attendances/"+employeeID+"?date=13-01-2026", nil)
	h.ListDay(c2)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}
