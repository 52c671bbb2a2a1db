package timesheet_test

import (
	"testing"
	"time"

	"go-attendance/internal/attendance"
	"go-attendance/internal/calendar"
	"go-attendance/internal/timesheet"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func at(date, clock string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, ist)
	return t.UTC()
}

func event(kind attendance.Kind, t time.Time) attendance.Event {
	return attendance.Event{ID: uuid.New(), Kind: kind, Origin: attendance.OriginDevice, OccurredAt: t}
}

func TestResolve(t *testing.T) {
	joined := day("2026-01-05")
	holiday := &calendar.Holiday{Name: "Republic Day"}
	leave := &calendar.ApprovedLeave{LeaveType: "SICK"}

	// 2026-01-13 is a Tuesday, 2026-01-18 a Sunday.
	tests := []struct {
		name     string
		in       timesheet.ResolveInput
		status   timesheet.Status
		worked   float64
		overtime float64
		notes    string
	}{
		{
			name:   "before join date",
			in:     timesheet.ResolveInput{Date: day("2026-01-02"), JoinDate: joined},
			status: timesheet.StatusPreEmployment,
		},
		{
			name:   "join date itself counts",
			in:     timesheet.ResolveInput{Date: joined, JoinDate: joined},
			status: timesheet.StatusAbsent,
		},
		{
			name:   "holiday without events",
			in:     timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Holiday: holiday},
			status: timesheet.StatusHoliday,
			notes:  "Republic Day",
		},
		{
			name:   "holiday wins over leave",
			in:     timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Holiday: holiday, Leave: leave},
			status: timesheet.StatusHoliday,
			notes:  "Republic Day",
		},
		{
			name:   "leave",
			in:     timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Leave: leave},
			status: timesheet.StatusLeave,
			notes:  "SICK",
		},
		{
			name:   "sunday",
			in:     timesheet.ResolveInput{Date: day("2026-01-18"), JoinDate: joined},
			status: timesheet.StatusWeekend,
		},
		{
			name:   "workday without events",
			in:     timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined},
			status: timesheet.StatusAbsent,
		},
		{
			name: "full day",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "18:00")),
			}},
			status: timesheet.StatusPresent,
			worked: 9,
		},
		{
			name: "exactly four hours is present",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "13:00")),
			}},
			status: timesheet.StatusPresent,
			worked: 4,
		},
		{
			name: "short day",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "12:30")),
			}},
			status: timesheet.StatusHalfDay,
			worked: 3.5,
		},
		{
			name: "long day earns overtime past ten hours",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "08:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "20:30")),
			}},
			status:   timesheet.StatusPresent,
			worked:   12.5,
			overtime: 2.5,
		},
		{
			name: "several sessions use first in and last out",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "12:00")),
				event(attendance.KindCheckIn, at("2026-01-13", "13:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "17:00")),
			}},
			status: timesheet.StatusPresent,
			worked: 8,
		},
		{
			name: "sunday work is all overtime",
			in: timesheet.ResolveInput{Date: day("2026-01-18"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-18", "10:00")),
				event(attendance.KindCheckOut, at("2026-01-18", "12:00")),
			}},
			status:   timesheet.StatusPresent,
			worked:   2,
			overtime: 2,
			notes:    timesheet.NoteRestDayWork,
		},
		{
			name: "holiday work is all overtime",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Holiday: holiday, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "10:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "16:00")),
			}},
			status:   timesheet.StatusPresent,
			worked:   6,
			overtime: 6,
			notes:    timesheet.NoteHolidayWork,
		},
		{
			name: "missed check-out on a workday",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
			}},
			status: timesheet.StatusAbsent,
			notes:  timesheet.NoteMissedCheckOut,
		},
		{
			name: "missed check-out after a closed session",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
				event(attendance.KindCheckOut, at("2026-01-13", "12:00")),
				event(attendance.KindCheckIn, at("2026-01-13", "13:00")),
			}},
			status: timesheet.StatusAbsent,
			notes:  timesheet.NoteMissedCheckOut,
		},
		{
			name: "missed check-out on sunday keeps weekend",
			in: timesheet.ResolveInput{Date: day("2026-01-18"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-18", "09:00")),
			}},
			status: timesheet.StatusWeekend,
			notes:  timesheet.NoteMissedCheckOut,
		},
		{
			name: "missed check-out on a holiday keeps holiday",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Holiday: holiday, Events: []attendance.Event{
				event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
			}},
			status: timesheet.StatusHoliday,
			notes:  timesheet.NoteMissedCheckOut,
		},
		{
			name: "lone check-out",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Events: []attendance.Event{
				event(attendance.KindCheckOut, at("2026-01-13", "18:00")),
			}},
			status: timesheet.StatusAbsent,
			notes:  timesheet.NoteMissedCheckIn,
		},
		{
			name: "lone check-out on leave",
			in: timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: joined, Leave: leave, Events: []attendance.Event{
				event(attendance.KindCheckOut, at("2026-01-13", "18:00")),
			}},
			status: timesheet.StatusLeave,
			notes:  timesheet.NoteMissedCheckIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := timesheet.Resolve(tt.in)
			assert.Equal(t, tt.status, rec.Status)
			assert.InDelta(t, tt.worked, rec.WorkedHours, 1e-9)
			assert.InDelta(t, tt.overtime, rec.OvertimeHours, 1e-9)
			assert.Equal(t, tt.notes, rec.Notes)
			assert.False(t, rec.AdminModified)
		})
	}
}

func TestResolve_IsDeterministic(t *testing.T) {
	in := timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: day("2026-01-01"), Events: []attendance.Event{
		event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
		event(attendance.KindCheckOut, at("2026-01-13", "18:00")),
	}}
	assert.Equal(t, timesheet.Resolve(in), timesheet.Resolve(in))
}

func TestResolve_AdminModified(t *testing.T) {
	out := event(attendance.KindCheckOut, at("2026-01-13", "18:00"))
	out.Origin = attendance.OriginAdminManual
	rec := timesheet.Resolve(timesheet.ResolveInput{Date: day("2026-01-13"), JoinDate: day("2026-01-01"), Events: []attendance.Event{
		event(attendance.KindCheckIn, at("2026-01-13", "09:00")),
		out,
	}})
	assert.True(t, rec.AdminModified)
	assert.Equal(t, "Tue", rec.Weekday)
}

func TestSummarize(t *testing.T) {
	s := timesheet.Summarize([]timesheet.DailyRecord{
		{Status: timesheet.StatusPresent, WorkedHours: 9},
		{Status: timesheet.StatusHalfDay, WorkedHours: 3},
		{Status: timesheet.StatusAbsent, Notes: timesheet.NoteMissedCheckOut},
		{Status: timesheet.StatusWeekend},
		{Status: timesheet.StatusHoliday},
		{Status: timesheet.StatusLeave},
		{Status: timesheet.StatusPreEmployment},
	})
	assert.Equal(t, 1, s.PresentDays)
	assert.Equal(t, 1, s.HalfDays)
	assert.Equal(t, 1, s.AbsentDays)
	assert.Equal(t, 1, s.WeekendDays)
	assert.Equal(t, 1, s.HolidayDays)
	assert.Equal(t, 1, s.LeaveDays)
	assert.Equal(t, 1, s.Anomalies)
	assert.InDelta(t, 12.0, s.WorkedHours, 1e-9)
}
