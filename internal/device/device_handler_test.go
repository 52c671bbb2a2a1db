package device_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-attendance/internal/device"
	deviceerrors "go-attendance/internal/device/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	registerFn func(ctx context.Context, employeeID string, req device.RegisterDeviceRequest) (device.DeviceStatusResponse, error)
	resetFn    func(ctx context.Context, adminID, employeeID, reason string) error
	statusFn   func(ctx context.Context, employeeID string) (device.DeviceStatusResponse, error)
	calls      int
}

func (f *fakeService) Register(ctx context.Context, employeeID string, req device.RegisterDeviceRequest) (device.DeviceStatusResponse, error) {
	f.calls++
	return f.registerFn(ctx, employeeID, req)
}

func (f *fakeService) Verify(ctx context.Context, employeeID, message, sig string) (bool, error) {
	return false, nil
}

func (f *fakeService) Reset(ctx context.Context, adminID, employeeID, reason string) error {
	f.calls++
	return f.resetFn(ctx, adminID, employeeID, reason)
}

func (f *fakeService) Status(ctx context.Context, employeeID string) (device.DeviceStatusResponse, error) {
	f.calls++
	return f.statusFn(ctx, employeeID)
}

func newRequestContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestDeviceHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()
	_, pub := newDevice(t)

	t.Run("binds the key", func(t *testing.T) {
		svc := &fakeService{
			registerFn: func(ctx context.Context, eid string, req device.RegisterDeviceRequest) (device.DeviceStatusResponse, error) {
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, "asha@example.com", req.Email)
				assert.Equal(t, pub, req.PublicKey)
				return device.DeviceStatusResponse{EmployeeID: eid, Bound: true}, nil
			},
		}
		h := device.NewHandler(svc)
		body := `{"email":"asha@example.com","public_key":` + quote(pub) + `,"device_fingerprint":"pixel-7"}`
		c, w := newRequestContext(http.MethodPost, "/devices/register", body)
		c.Set("employee_id", employeeID)

		h.Register(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"bound":true`)
	})

	t.Run("rejects bad input before the service", func(t *testing.T) {
		for _, body := range []string{
			`{"email":"not-an-email","public_key":"k"}`,
			`{"email":"asha@example.com","public_key":"   "}`,
			`{"email":"asha@example.com"}`,
		} {
			svc := &fakeService{}
			h := device.NewHandler(svc)
			c, w := newRequestContext(http.MethodPost, "/devices/register", body)
			c.Set("employee_id", employeeID)

			h.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Contains(t, w.Body.String(), `"INVALID_INPUT"`)
			assert.Zero(t, svc.calls)
		}
	})

	t.Run("second binding conflicts", func(t *testing.T) {
		svc := &fakeService{
			registerFn: func(ctx context.Context, eid string, req device.RegisterDeviceRequest) (device.DeviceStatusResponse, error) {
				return device.DeviceStatusResponse{}, deviceerrors.ErrDeviceAlreadyBound
			},
		}
		h := device.NewHandler(svc)
		c, w := newRequestContext(http.MethodPost, "/devices/register", `{"email":"asha@example.com","public_key":"k"}`)

		h.Register(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"INVALID_STATE"`)
	})

	t.Run("email mismatch is a trust failure", func(t *testing.T) {
		svc := &fakeService{
			registerFn: func(ctx context.Context, eid string, req device.RegisterDeviceRequest) (device.DeviceStatusResponse, error) {
				return device.DeviceStatusResponse{}, deviceerrors.ErrEmailMismatch
			},
		}
		h := device.NewHandler(svc)
		c, w := newRequestContext(http.MethodPost, "/devices/register", `{"email":"ravi@example.com","public_key":"k"}`)

		h.Register(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), `"TRUST_FAILURE"`)
	})
}

func TestDeviceHandler_Reset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	adminID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("requires a reason", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"reason":"  "}`} {
			svc := &fakeService{}
			h := device.NewHandler(svc)
			c, w := newRequestContext(http.MethodPost, "/devices/"+employeeID+"/reset", body)
			c.Params = gin.Params{{Key: "employee_id", Value: employeeID}}
			c.Set("user_id", adminID)

			h.Reset(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "is required")
			assert.Zero(t, svc.calls)
		}
	})

	t.Run("clears the binding", func(t *testing.T) {
		svc := &fakeService{
			resetFn: func(ctx context.Context, aid, eid, reason string) error {
				assert.Equal(t, adminID, aid)
				assert.Equal(t, employeeID, eid)
				assert.Equal(t, "lost phone", reason)
				return nil
			},
		}
		h := device.NewHandler(svc)
		c, w := newRequestContext(http.MethodPost, "/devices/"+employeeID+"/reset", `{"reason":"lost phone"}`)
		c.Params = gin.Params{{Key: "employee_id", Value: employeeID}}
		c.Set("user_id", adminID)

		h.Reset(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reset":true`)
	})

	t.Run("nothing to reset", func(t *testing.T) {
		svc := &fakeService{
			resetFn: func(ctx context.Context, aid, eid, reason string) error {
				return deviceerrors.ErrNoDeviceBound
			},
		}
		h := device.NewHandler(svc)
		c, w := newRequestContext(http.MethodPost, "/devices/"+employeeID+"/reset", `{"reason":"lost phone"}`)
		c.Params = gin.Params{{Key: "employee_id", Value: employeeID}}

		h.Reset(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeviceHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)
	employeeID := uuid.New().String()
	svc := &fakeService{
		statusFn: func(ctx context.Context, eid string) (device.DeviceStatusResponse, error) {
			return device.DeviceStatusResponse{EmployeeID: eid}, nil
		},
	}
	h := device.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/devices/me", nil)
	c.Set("employee_id", employeeID)

	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bound":false`)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, "\n", `\n`) + `"`
}
