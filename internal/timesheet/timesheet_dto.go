package timesheet

type MonthQuery struct {
	Month string `form:"month" binding:"omitempty,datetime=2006-01"`
}

type DayResponse struct {
	Date          string  `json:"date"`
	Weekday       string  `json:"weekday"`
	Status        string  `json:"status"`
	CheckIn       *string `json:"check_in"`
	CheckOut      *string `json:"check_out"`
	WorkedHours   float64 `json:"worked_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Notes         string  `json:"notes"`
	AdminModified bool    `json:"admin_modified"`
}

type MonthResponse struct {
	EmployeeID string        `json:"employee_id"`
	Month      string        `json:"month"`
	Days       []DayResponse `json:"days"`
	Summary    Summary       `json:"summary"`
}
