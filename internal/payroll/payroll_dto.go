package payroll

type GeneratePayrollRequest struct {
	Month      string `json:"month" binding:"required"`
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
}

type UnlockPayrollRequest struct {
	Month      string `json:"month" binding:"required"`
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	Reason     string `json:"reason" binding:"required,notblank,max=500"`
}

type ResetPayrollRequest struct {
	Month      string `json:"month" binding:"required"`
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	Reason     string `json:"reason" binding:"required,notblank,max=500"`
}

type ReportQuery struct {
	Month      string `form:"month"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
}

type ReportResponse struct {
	ID             string         `json:"id"`
	EmployeeID     string         `json:"employee_id"`
	EmployeeName   string         `json:"employee_name"`
	Month          string         `json:"month"`
	Status         string         `json:"status"`
	BaseSalary     string         `json:"base_salary"`
	DailyRate      string         `json:"daily_rate"`
	NetSalary      string         `json:"net_salary"`
	WorkingDays    int            `json:"working_days"`
	PresentDays    int            `json:"present_days"`
	HalfDays       int            `json:"half_days"`
	AbsentDays     int            `json:"absent_days"`
	HolidayDays    int            `json:"holiday_days"`
	LeaveDays      int            `json:"leave_days"`
	SundayDays     int            `json:"sunday_days"`
	DailyBreakdown []BreakdownDay `json:"daily_breakdown"`
	GeneratedBy    string         `json:"generated_by"`
	GeneratedAt    string         `json:"generated_at"`
	UnlockedBy     *string        `json:"unlocked_by,omitempty"`
	UnlockedAt     *string        `json:"unlocked_at,omitempty"`
	UnlockReason   *string        `json:"unlock_reason,omitempty"`
}

type GenerateResponse struct {
	Month   string            `json:"month"`
	Reports []ReportResponse  `json:"reports"`
	Failed  []GenerateFailure `json:"failed,omitempty"`
}

// GenerateFailure names an employee whose report was not generated. Retry
// with employee_id; the reports listed beside it are already locked.
type GenerateFailure struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

type UnlockResponse struct {
	Month    string `json:"month"`
	Unlocked int    `json:"unlocked"`
}

type ResetResponse struct {
	Month   string `json:"month"`
	Deleted int    `json:"deleted"`
}
