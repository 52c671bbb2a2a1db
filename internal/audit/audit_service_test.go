package audit_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-attendance/internal/audit"
	"go-attendance/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRepo struct {
	rows   []audit.AuditLog
	locked int
}

func (f *fakeAuditRepo) WithTx(tx *sql.Tx) audit.Repository { return f }

func (f *fakeAuditRepo) LockChain(ctx context.Context) error {
	f.locked++
	return nil
}

func (f *fakeAuditRepo) Last(ctx context.Context) (*audit.AuditLog, error) {
	if len(f.rows) == 0 {
		return nil, nil
	}
	last := f.rows[len(f.rows)-1]
	return &last, nil
}

func (f *fakeAuditRepo) Append(ctx context.Context, entry *audit.AuditLog) error {
	entry.Seq = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter audit.ListFilter) ([]audit.AuditLog, error) {
	var out []audit.AuditLog
	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if filter.Action != "" && string(r.Action) != filter.Action {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAuditRepo) Chain(ctx context.Context) ([]audit.AuditLog, error) {
	return f.rows, nil
}

func TestAudit_RecordChainsEntries(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := audit.NewService(repo)
	ctx := contextutil.WithRequestID(context.Background(), "req-1")

	require.NoError(t, svc.Record(ctx, nil, audit.Entry{
		Action:     audit.ActionAttendanceManualAdd,
		ActorID:    "admin-1",
		EmployeeID: "emp-1",
		SubjectID:  "evt-1",
		Reason:     "forgot to check in",
		Meta:       map[string]any{"event_id": "evt-1"},
	}))
	require.NoError(t, svc.Record(ctx, nil, audit.Entry{
		Action:  audit.ActionPayrollReset,
		ActorID: "admin-2",
		Reason:  "wrong salary",
	}))

	require.Len(t, repo.rows, 2)
	assert.Equal(t, 2, repo.locked)
	assert.Empty(t, repo.rows[0].PrevHash)
	assert.Equal(t, repo.rows[0].Hash, repo.rows[1].PrevHash)
	assert.Equal(t, "req-1", repo.rows[0].RequestID)
	assert.Equal(t, `{"event_id":"evt-1"}`, repo.rows[0].Meta)
	assert.Equal(t, "{}", repo.rows[1].Meta)
	assert.Nil(t, repo.rows[1].EmployeeID)
	assert.Equal(t, -1, audit.VerifyChain(repo.rows))

	resp, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Intact)
	assert.Equal(t, 2, resp.Entries)
}

func TestAudit_VerifyDetectsTampering(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := audit.NewService(repo)
	ctx := context.Background()

	for _, reason := range []string{"one", "two", "three"} {
		require.NoError(t, svc.Record(ctx, nil, audit.Entry{
			Action:  audit.ActionDeviceReset,
			ActorID: "admin-1",
			Reason:  reason,
		}))
	}

	repo.rows[1].Reason = "edited"
	assert.Equal(t, 1, audit.VerifyChain(repo.rows))

	resp, err := svc.Verify(ctx)
	require.NoError(t, err)
	assert.False(t, resp.Intact)
	require.NotNil(t, resp.BrokenAt)
	assert.Equal(t, repo.rows[1].ID.String(), *resp.BrokenAt)
}

func TestAudit_VerifyDetectsRemovedRow(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := audit.NewService(repo)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(context.Background(), nil, audit.Entry{Action: audit.ActionHolidayDeclared, ActorID: "a"}))
	}

	rows := append([]audit.AuditLog{}, repo.rows[0], repo.rows[2])
	assert.Equal(t, 1, audit.VerifyChain(rows))
	assert.Equal(t, -1, audit.VerifyChain(nil))
}

func TestAuditHandler_List(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := audit.NewService(repo)
	require.NoError(t, svc.Record(context.Background(), nil, audit.Entry{Action: audit.ActionDeviceReset, ActorID: "a", Reason: "lost phone"}))
	require.NoError(t, svc.Record(context.Background(), nil, audit.Entry{Action: audit.ActionPayrollUnlocked, ActorID: "a", Reason: "late leave"}))

	h := audit.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs?action=DEVICE_RESET", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Ok   bool                     `json:"ok"`
		Data []audit.AuditLogResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Ok)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "lost phone", env.Data[0].Reason)
}
