package calendar

import (
	"time"

	"go-attendance/internal/shared/clock"
)

// Context answers holiday and leave lookups for a fixed range of dates.
// It is immutable once built.
type Context struct {
	holidays map[string]Holiday
	leaves   map[string]ApprovedLeave
}

// NewContext indexes holidays by date and expands each leave into its days.
func NewContext(holidays []Holiday, leaves []Leave) *Context {
	c := &Context{
		holidays: make(map[string]Holiday, len(holidays)),
		leaves:   make(map[string]ApprovedLeave),
	}
	for _, h := range holidays {
		c.holidays[h.Date.Format(clock.DateLayout)] = h
	}
	for _, l := range leaves {
		if l.Status != LeaveStatusApproved {
			continue
		}
		for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
			c.leaves[leaveKey(l.EmployeeID.String(), d)] = ApprovedLeave{
				EmployeeID: l.EmployeeID,
				Date:       d,
				LeaveType:  l.LeaveType,
			}
		}
	}
	return c
}

func (c *Context) HolidayOn(date time.Time) (Holiday, bool) {
	h, ok := c.holidays[date.Format(clock.DateLayout)]
	return h, ok
}

func (c *Context) LeaveOn(employeeID string, date time.Time) (ApprovedLeave, bool) {
	l, ok := c.leaves[leaveKey(employeeID, date)]
	return l, ok
}

// IsHoliday is HolidayOn without the record.
func (c *Context) IsHoliday(date time.Time) bool {
	_, ok := c.HolidayOn(date)
	return ok
}

func leaveKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(clock.DateLayout)
}
