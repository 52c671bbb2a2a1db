package timesheet_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-attendance/internal/attendance"
	"go-attendance/internal/calendar"
	"go-attendance/internal/employee"
	employeeMock "go-attendance/internal/employee/mock"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/timesheet"
	timesheeterrors "go-attendance/internal/timesheet/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeEventSource struct {
	events []attendance.Event
	calls  int
}

func (f *fakeEventSource) EventsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Event, error) {
	f.calls++
	var out []attendance.Event
	for _, e := range f.events {
		if !e.WorkDate.Before(from) && !e.WorkDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeCalendarSource struct {
	holidays []calendar.Holiday
}

func (f *fakeCalendarSource) ForRange(ctx context.Context, from, to time.Time) (*calendar.Context, error) {
	return calendar.NewContext(f.holidays, nil), nil
}

// 2026-01-15 11:30 in the reporting zone.
var now = time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC)

func setupTimesheetTest(t *testing.T, cache *timesheet.Cache) (*fakeEventSource, timesheet.Service, uuid.UUID) {
	t.Helper()
	empID := uuid.New()
	events := &fakeEventSource{}
	cal := &fakeCalendarSource{holidays: []calendar.Holiday{{Date: day("2026-01-14"), Name: "Pongal"}}}
	employees := employeeMock.NewMockReader(gomock.NewController(t))
	employees.EXPECT().FindByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id string) (*employee.Employee, error) {
			if id != empID.String() {
				return nil, gorm.ErrRecordNotFound
			}
			return &employee.Employee{ID: empID, JoinDate: day("2026-01-05"), IsActive: true}, nil
		}).AnyTimes()
	zone := clock.MustZone("+05:30", clock.Fixed(now))
	return events, timesheet.NewService(events, cal, employees, cache, zone), empID
}

func TestTimesheetService_CurrentMonth(t *testing.T) {
	events, svc, empID := setupTimesheetTest(t, timesheet.NewCache(nil))
	events.events = []attendance.Event{
		{ID: uuid.New(), EmployeeID: empID, Kind: attendance.KindCheckIn, Origin: attendance.OriginDevice,
			OccurredAt: at("2026-01-13", "09:00"), WorkDate: day("2026-01-13")},
		{ID: uuid.New(), EmployeeID: empID, Kind: attendance.KindCheckOut, Origin: attendance.OriginDevice,
			OccurredAt: at("2026-01-13", "12:00"), WorkDate: day("2026-01-13")},
		{ID: uuid.New(), EmployeeID: empID, Kind: attendance.KindCheckIn, Origin: attendance.OriginDevice,
			OccurredAt: at("2026-01-15", "09:00"), WorkDate: day("2026-01-15")},
	}

	resp, err := svc.MonthFor(context.Background(), empID.String(), "")

	require.NoError(t, err)
	assert.Equal(t, "2026-01", resp.Month)
	require.Len(t, resp.Days, 15, "future days are excluded")

	byDate := map[string]timesheet.DayResponse{}
	for _, d := range resp.Days {
		byDate[d.Date] = d
	}
	assert.Equal(t, "PreEmployment", byDate["2026-01-02"].Status)
	assert.Equal(t, "Weekend", byDate["2026-01-11"].Status)
	assert.Equal(t, "HalfDay", byDate["2026-01-13"].Status)
	assert.Equal(t, 3.0, byDate["2026-01-13"].WorkedHours)
	assert.Equal(t, "Holiday", byDate["2026-01-14"].Status)
	assert.Equal(t, "Pongal", byDate["2026-01-14"].Notes)
	assert.Equal(t, "Absent", byDate["2026-01-15"].Status)
	assert.Equal(t, timesheet.NoteMissedCheckOut, byDate["2026-01-15"].Notes)

	assert.Equal(t, 1, resp.Summary.HalfDays)
	assert.Equal(t, 1, resp.Summary.HolidayDays)
	// 5,6,7,8,9,10,12,15
	assert.Equal(t, 8, resp.Summary.AbsentDays)
}

func TestTimesheetService_FutureMonthIsEmpty(t *testing.T) {
	_, svc, empID := setupTimesheetTest(t, timesheet.NewCache(nil))
	resp, err := svc.MonthFor(context.Background(), empID.String(), "2026-03")
	require.NoError(t, err)
	assert.Empty(t, resp.Days)
}

func TestTimesheetService_Errors(t *testing.T) {
	_, svc, _ := setupTimesheetTest(t, timesheet.NewCache(nil))
	ctx := context.Background()

	_, err := svc.MonthFor(ctx, uuid.NewString(), "2026-01")
	assert.ErrorIs(t, err, timesheeterrors.ErrEmployeeNotFound)

	_, err = svc.MonthFor(ctx, "not-a-uuid", "2026-01")
	assert.ErrorIs(t, err, timesheeterrors.ErrEmployeeNotFound)

	_, err = svc.MonthFor(ctx, uuid.NewString(), "January")
	assert.ErrorIs(t, err, timesheeterrors.ErrInvalidMonth)
}

func TestTimesheetService_PastMonthServedFromCache(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	events, svc, empID := setupTimesheetTest(t, timesheet.NewCache(rdb))

	dates := clock.DaysIn(day("2025-12-01"))
	keys := make([]string, len(dates))
	vals := make([]interface{}, len(dates))
	for i, d := range dates {
		keys[i] = timesheet.CacheKey(empID.String(), d)
		data, err := json.Marshal(timesheet.DailyRecord{Date: d, Status: timesheet.StatusPreEmployment})
		require.NoError(t, err)
		vals[i] = string(data)
	}
	mock.ExpectMGet("timesheet:gen:"+empID.String(), "timesheet:gen:calendar").SetVal([]interface{}{nil, nil})
	mock.ExpectMGet(keys...).SetVal(vals)

	resp, err := svc.Month(context.Background(), empID.String(), day("2025-12-01"))

	require.NoError(t, err)
	assert.Len(t, resp.Days, 31)
	assert.Zero(t, events.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimesheetService_ResolveMonthBypassesCache(t *testing.T) {
	events, svc, empID := setupTimesheetTest(t, nil)
	emp := employee.Employee{ID: empID, JoinDate: day("2025-06-01")}

	days, err := svc.ResolveMonth(context.Background(), emp, day("2025-12-01"), calendar.NewContext(nil, nil))

	require.NoError(t, err)
	assert.Len(t, days, 31)
	assert.Equal(t, 1, events.calls)
}
