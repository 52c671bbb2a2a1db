package payroll

import (
	"time"

	"go-attendance/internal/shared/clock"
	"go-attendance/internal/timesheet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

type AggregateInput struct {
	EmployeeID uuid.UUID
	Month      time.Time
	BaseSalary decimal.Decimal
	JoinDate   time.Time
	Days       []timesheet.DailyRecord
	// Holidays holds YYYY-MM-DD keys of the month's holidays.
	Holidays map[string]bool
	// Through is the last day that counts. Zero means the whole month.
	Through time.Time
}

// Aggregate turns resolved days into the figures of a report. Working days
// count Monday to Saturday up to Through, skipping holidays and days before
// joining; the day counts come from the resolved days only.
func Aggregate(in AggregateInput) Report {
	month := clock.MonthStart(in.Month)
	join := dateOnly(in.JoinDate)
	last := clock.MonthEnd(month)
	if !in.Through.IsZero() && dateOnly(in.Through).Before(last) {
		last = dateOnly(in.Through)
	}

	r := Report{
		EmployeeID:     in.EmployeeID,
		Month:          month,
		BaseSalary:     in.BaseSalary.Round(2),
		DailyBreakdown: make(Breakdown, 0, len(in.Days)),
	}

	for _, d := range clock.DaysIn(month) {
		if d.After(last) {
			break
		}
		if d.Weekday() == time.Sunday || in.Holidays[d.Format(clock.DateLayout)] || d.Before(join) {
			continue
		}
		r.WorkingDays++
	}

	for _, d := range in.Days {
		switch d.Status {
		case timesheet.StatusPresent:
			r.PresentDays++
		case timesheet.StatusAbsent:
			r.AbsentDays++
		case timesheet.StatusHalfDay:
			r.HalfDays++
		case timesheet.StatusHoliday:
			r.HolidayDays++
		case timesheet.StatusLeave:
			r.LeaveDays++
		case timesheet.StatusWeekend:
			r.SundayDays++
		}
		r.DailyBreakdown = append(r.DailyBreakdown, breakdownDay(d))
	}

	if r.WorkingDays > 0 {
		r.DailyRate = r.BaseSalary.Div(decimal.NewFromInt(int64(r.WorkingDays))).Round(2)
	} else {
		r.DailyRate = decimal.Zero
	}
	r.NetSalary = Recompute(r)
	return r
}

// Recompute derives the net salary from a report's stored breakdown and
// daily rate.
func Recompute(r Report) decimal.Decimal {
	var absent, halfDays int64
	for _, d := range r.DailyBreakdown {
		switch timesheet.Status(d.Status) {
		case timesheet.StatusAbsent:
			absent++
		case timesheet.StatusHalfDay:
			halfDays++
		}
	}
	deduction := r.DailyRate.Mul(decimal.NewFromInt(absent)).
		Add(r.DailyRate.Mul(half).Mul(decimal.NewFromInt(halfDays)))
	net := r.BaseSalary.Sub(deduction)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net.Round(2)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func breakdownDay(d timesheet.DailyRecord) BreakdownDay {
	b := BreakdownDay{
		Date:          d.Date.Format(clock.DateLayout),
		Weekday:       d.Weekday,
		Status:        string(d.Status),
		WorkedHours:   d.WorkedHours,
		OvertimeHours: d.OvertimeHours,
		Notes:         d.Notes,
		AdminModified: d.AdminModified,
	}
	if d.CheckIn != nil {
		v := d.CheckIn.UTC().Format(time.RFC3339)
		b.CheckIn = &v
	}
	if d.CheckOut != nil {
		v := d.CheckOut.UTC().Format(time.RFC3339)
		b.CheckOut = &v
	}
	return b
}
