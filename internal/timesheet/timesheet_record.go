package timesheet

import "time"

type Status string

const (
	StatusPresent       Status = "Present"
	StatusHalfDay       Status = "HalfDay"
	StatusAbsent        Status = "Absent"
	StatusHoliday       Status = "Holiday"
	StatusLeave         Status = "Leave"
	StatusWeekend       Status = "Weekend"
	StatusPreEmployment Status = "PreEmployment"
)

const (
	NoteMissedCheckOut = "Missed Check-out"
	NoteMissedCheckIn  = "Missed Check-in"
	NoteRestDayWork    = "Sunday OT"
	NoteHolidayWork    = "Holiday Work"
)

// DailyRecord is the resolved status of one employee day. It is also the
// cached form, so every field round-trips through JSON.
type DailyRecord struct {
	Date          time.Time  `json:"date"`
	Weekday       string     `json:"weekday"`
	Status        Status     `json:"status"`
	CheckIn       *time.Time `json:"check_in,omitempty"`
	CheckOut      *time.Time `json:"check_out,omitempty"`
	WorkedHours   float64    `json:"worked_hours"`
	OvertimeHours float64    `json:"overtime_hours"`
	Notes         string     `json:"notes"`
	AdminModified bool       `json:"admin_modified"`
}

// Summary counts a run of daily records.
type Summary struct {
	PresentDays   int     `json:"present_days"`
	HalfDays      int     `json:"half_days"`
	AbsentDays    int     `json:"absent_days"`
	HolidayDays   int     `json:"holiday_days"`
	LeaveDays     int     `json:"leave_days"`
	WeekendDays   int     `json:"weekend_days"`
	WorkedHours   float64 `json:"worked_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Anomalies     int     `json:"anomalies"`
}

func Summarize(days []DailyRecord) Summary {
	var s Summary
	for _, d := range days {
		switch d.Status {
		case StatusPresent:
			s.PresentDays++
		case StatusHalfDay:
			s.HalfDays++
		case StatusAbsent:
			s.AbsentDays++
		case StatusHoliday:
			s.HolidayDays++
		case StatusLeave:
			s.LeaveDays++
		case StatusWeekend:
			s.WeekendDays++
		}
		s.WorkedHours += d.WorkedHours
		s.OvertimeHours += d.OvertimeHours
		if d.Notes == NoteMissedCheckOut || d.Notes == NoteMissedCheckIn {
			s.Anomalies++
		}
	}
	return s
}
