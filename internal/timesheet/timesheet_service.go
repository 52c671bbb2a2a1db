package timesheet

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go-attendance/internal/attendance"
	"go-attendance/internal/calendar"
	"go-attendance/internal/employee"
	"go-attendance/internal/shared/clock"
	"go-attendance/internal/shared/contextutil"
	"go-attendance/internal/shared/metrics"
	timesheeterrors "go-attendance/internal/timesheet/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// EventSource is the ledger read side.
type EventSource interface {
	EventsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Event, error)
}

// CalendarSource builds holiday and leave lookups.
type CalendarSource interface {
	ForRange(ctx context.Context, from, to time.Time) (*calendar.Context, error)
}

type Service interface {
	// Month resolves the visible days of a month, served from cache where
	// possible.
	Month(ctx context.Context, employeeID string, month time.Time) (MonthResponse, error)
	MonthFor(ctx context.Context, employeeID, month string) (MonthResponse, error)
	// ResolveMonth always reads the ledger. cal may be nil.
	ResolveMonth(ctx context.Context, emp employee.Employee, month time.Time, cal *calendar.Context) ([]DailyRecord, error)
}

type service struct {
	events    EventSource
	calendar  CalendarSource
	employees employee.Reader
	cache     *Cache
	zone      *clock.Zone
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(
	events EventSource,
	cal CalendarSource,
	employees employee.Reader,
	cache *Cache,
	zone *clock.Zone,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("timesheet.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timesheet.service")
	}
	return &service{
		events:    events,
		calendar:  cal,
		employees: employees,
		cache:     cache,
		zone:      zone,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) MonthFor(ctx context.Context, employeeID, month string) (MonthResponse, error) {
	m := s.zone.MonthOf(s.zone.Now())
	if strings.TrimSpace(month) != "" {
		parsed, err := clock.ParseMonth(strings.TrimSpace(month))
		if err != nil {
			return MonthResponse{}, timesheeterrors.ErrInvalidMonth
		}
		m = parsed
	}
	return s.Month(ctx, employeeID, m)
}

func (s *service) Month(ctx context.Context, employeeID string, month time.Time) (MonthResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return MonthResponse{}, timesheeterrors.ErrEmployeeNotFound
	}
	month = clock.MonthStart(month)

	key := employeeID + ":" + month.Format(clock.MonthLayout)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.cachedMonth(ctx, employeeID, month)
	})
	if err != nil {
		return MonthResponse{}, err
	}

	days := v.([]DailyRecord)
	resp := MonthResponse{
		EmployeeID: employeeID,
		Month:      month.Format(clock.MonthLayout),
		Days:       make([]DayResponse, 0, len(days)),
		Summary:    Summarize(days),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, mapDay(d))
	}
	return resp, nil
}

func (s *service) cachedMonth(ctx context.Context, employeeID string, month time.Time) ([]DailyRecord, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("employee_id", employeeID))

	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timesheeterrors.ErrEmployeeNotFound
		}
		return nil, err
	}

	dates := s.visibleDays(month)
	if len(dates) == 0 {
		return []DailyRecord{}, nil
	}

	today := s.zone.Today()
	var past []time.Time
	for _, d := range dates {
		if d.Before(today) {
			past = append(past, d)
		}
	}

	stamp, err := s.cache.Stamp(ctx, employeeID)
	cacheUsable := err == nil
	if err != nil {
		log.Warn("timesheet cache stamp failed", zap.Error(err))
	}
	hits := map[string]DailyRecord{}
	if cacheUsable {
		if hits, err = s.cache.Load(ctx, employeeID, past); err != nil {
			log.Warn("timesheet cache load failed", zap.Error(err))
		}
	}

	if len(hits) == len(dates) {
		metrics.TimesheetCache.WithLabelValues("hit").Add(float64(len(hits)))
		out := make([]DailyRecord, len(dates))
		for i, d := range dates {
			out[i] = hits[d.Format(clock.DateLayout)]
		}
		return out, nil
	}

	resolved, err := s.resolveDates(ctx, *emp, dates, nil)
	if err != nil {
		return nil, err
	}

	var fresh []DailyRecord
	out := make([]DailyRecord, len(dates))
	for i, rec := range resolved {
		if hit, ok := hits[rec.Date.Format(clock.DateLayout)]; ok {
			out[i] = hit
			metrics.TimesheetCache.WithLabelValues("hit").Inc()
			continue
		}
		out[i] = rec
		metrics.TimesheetCache.WithLabelValues("miss").Inc()
		if rec.Date.Before(today) {
			fresh = append(fresh, rec)
		}
	}

	if cacheUsable {
		if _, err := s.cache.Store(ctx, employeeID, stamp, fresh); err != nil {
			log.Warn("timesheet cache store failed", zap.Error(err))
		}
	}
	return out, nil
}

func (s *service) ResolveMonth(ctx context.Context, emp employee.Employee, month time.Time, cal *calendar.Context) ([]DailyRecord, error) {
	dates := s.visibleDays(clock.MonthStart(month))
	if len(dates) == 0 {
		return []DailyRecord{}, nil
	}
	return s.resolveDates(ctx, emp, dates, cal)
}

func (s *service) resolveDates(ctx context.Context, emp employee.Employee, dates []time.Time, cal *calendar.Context) ([]DailyRecord, error) {
	started := time.Now()
	defer func() { metrics.ResolveDuration.Observe(time.Since(started).Seconds()) }()

	from, to := dates[0], dates[len(dates)-1]
	if cal == nil {
		var err error
		if cal, err = s.calendar.ForRange(ctx, from, to); err != nil {
			return nil, err
		}
	}
	events, err := s.events.EventsForRange(ctx, emp.ID.String(), from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]attendance.Event)
	for _, e := range events {
		k := e.WorkDate.Format(clock.DateLayout)
		byDate[k] = append(byDate[k], e)
	}

	joinDate := time.Date(emp.JoinDate.Year(), emp.JoinDate.Month(), emp.JoinDate.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]DailyRecord, len(dates))
	for i, d := range dates {
		in := ResolveInput{
			Date:     d,
			JoinDate: joinDate,
			Events:   byDate[d.Format(clock.DateLayout)],
		}
		if h, ok := cal.HolidayOn(d); ok {
			in.Holiday = &h
		}
		if l, ok := cal.LeaveOn(emp.ID.String(), d); ok {
			in.Leave = &l
		}
		out[i] = Resolve(in)
	}
	return out, nil
}

// visibleDays lists the days of month up to today in the reporting zone.
func (s *service) visibleDays(month time.Time) []time.Time {
	today := s.zone.Today()
	var out []time.Time
	for _, d := range clock.DaysIn(month) {
		if d.After(today) {
			break
		}
		out = append(out, d)
	}
	return out
}

func mapDay(d DailyRecord) DayResponse {
	resp := DayResponse{
		Date:          d.Date.Format(clock.DateLayout),
		Weekday:       d.Weekday,
		Status:        string(d.Status),
		WorkedHours:   round2(d.WorkedHours),
		OvertimeHours: round2(d.OvertimeHours),
		Notes:         d.Notes,
		AdminModified: d.AdminModified,
	}
	if d.CheckIn != nil {
		v := d.CheckIn.UTC().Format(time.RFC3339)
		resp.CheckIn = &v
	}
	if d.CheckOut != nil {
		v := d.CheckOut.UTC().Format(time.RFC3339)
		resp.CheckOut = &v
	}
	return resp
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
