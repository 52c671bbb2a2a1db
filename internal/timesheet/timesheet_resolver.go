package timesheet

import (
	"time"

	"go-attendance/internal/attendance"
	"go-attendance/internal/calendar"
)

const (
	halfDayThresholdHours  = 4.0
	overtimeThresholdHours = 10.0
)

type ResolveInput struct {
	Date     time.Time
	JoinDate time.Time
	Holiday  *calendar.Holiday
	Leave    *calendar.ApprovedLeave
	// Events are the day's effective events ordered by occurrence.
	Events []attendance.Event
}

// Resolve derives the status of one day. It is pure: the same input always
// yields the same record.
func Resolve(in ResolveInput) DailyRecord {
	rec := DailyRecord{
		Date:    in.Date,
		Weekday: in.Date.Weekday().String()[:3],
	}

	if in.Date.Before(in.JoinDate) {
		rec.Status = StatusPreEmployment
		return rec
	}

	for _, e := range in.Events {
		if e.Origin.IsAdmin() {
			rec.AdminModified = true
		}
	}

	restDay := in.Date.Weekday() == time.Sunday
	if len(in.Events) == 0 {
		rec.Status, rec.Notes = idleStatus(in, restDay)
		return rec
	}

	last := in.Events[len(in.Events)-1]
	firstIn := firstCheckIn(in.Events)

	if last.Kind == attendance.KindCheckIn {
		at := firstIn.OccurredAt
		rec.CheckIn = &at
		switch {
		case in.Holiday != nil:
			rec.Status = StatusHoliday
		case restDay:
			rec.Status = StatusWeekend
		default:
			rec.Status = StatusAbsent
		}
		rec.Notes = NoteMissedCheckOut
		return rec
	}

	if firstIn == nil {
		out := last.OccurredAt
		rec.CheckOut = &out
		rec.Status, _ = idleStatus(in, restDay)
		rec.Notes = NoteMissedCheckIn
		return rec
	}

	checkIn, checkOut := firstIn.OccurredAt, last.OccurredAt
	rec.CheckIn = &checkIn
	rec.CheckOut = &checkOut
	worked := float64(checkOut.Sub(checkIn).Milliseconds()) / 3.6e6
	rec.WorkedHours = worked

	switch {
	case in.Holiday != nil:
		rec.Status = StatusPresent
		rec.OvertimeHours = worked
		rec.Notes = NoteHolidayWork
	case restDay:
		rec.Status = StatusPresent
		rec.OvertimeHours = worked
		rec.Notes = NoteRestDayWork
	case worked < halfDayThresholdHours:
		rec.Status = StatusHalfDay
	default:
		rec.Status = StatusPresent
		if worked > overtimeThresholdHours {
			rec.OvertimeHours = worked - overtimeThresholdHours
		}
	}
	return rec
}

// idleStatus is the status of a day without a usable check-in/check-out pair.
func idleStatus(in ResolveInput, restDay bool) (Status, string) {
	switch {
	case in.Holiday != nil:
		return StatusHoliday, in.Holiday.Name
	case in.Leave != nil:
		return StatusLeave, in.Leave.LeaveType
	case restDay:
		return StatusWeekend, ""
	}
	return StatusAbsent, ""
}

func firstCheckIn(events []attendance.Event) *attendance.Event {
	for i := range events {
		if events[i].Kind == attendance.KindCheckIn {
			return &events[i]
		}
	}
	return nil
}
