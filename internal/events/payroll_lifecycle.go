package events

import "time"

const PayrollLifecycleTopic = "hr.payroll.lifecycle.v1"

const (
	EventPayrollLocked   = "payroll_locked"
	EventPayrollUnlocked = "payroll_unlocked"
	EventPayrollReset    = "payroll_reset"
)

type PayrollLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	ReportID   string    `json:"report_id"`
	EmployeeID string    `json:"employee_id"`
	Month      string    `json:"month"`
	NetSalary  string    `json:"net_salary,omitempty"`
	ActorID    string    `json:"actor_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
