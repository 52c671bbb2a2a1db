// Package metrics holds the Prometheus collectors for attendance and payroll.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "ledger",
	Name:      "events_recorded_total",
	Help:      "Ledger events appended, by kind and origin.",
}, []string{"kind", "origin"})

var Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "ledger",
	Name:      "rejections_total",
	Help:      "Attendance operations refused, by reason.",
}, []string{"reason"})

var TrustFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "signature",
	Name:      "trust_failures_total",
	Help:      "Signed intents that failed verification, by reason.",
}, []string{"reason"})

var TimesheetCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "timesheet",
	Name:      "cache_lookups_total",
	Help:      "Resolved-day cache lookups, by result.",
}, []string{"result"})

var PayrollReports = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "payroll",
	Name:      "reports_total",
	Help:      "Payroll report transitions, by action.",
}, []string{"action"})

var ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "attendance",
	Subsystem: "timesheet",
	Name:      "resolve_month_seconds",
	Help:      "Time spent resolving a month of days for one employee.",
	Buckets:   prometheus.DefBuckets,
})
