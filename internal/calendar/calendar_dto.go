package calendar

type DeclareHolidayRequest struct {
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
	Name        string `json:"name" binding:"required,notblank,max=120"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

type RemoveHolidayRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

type HolidayQuery struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=2100"`
}

type HolidayResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GrantLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=ANNUAL SICK CASUAL UNPAID OTHER"`
	StartDate  string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Reason     string `json:"reason" binding:"required,notblank,max=500"`
}

type RevokeLeaveRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

type LeaveQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
}

type LeaveResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalDays  int    `json:"total_days"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	ApprovedBy string `json:"approved_by"`
}
