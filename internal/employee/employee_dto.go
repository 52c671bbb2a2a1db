package employee

type CreateEmployeeRequest struct {
	FullName      string `json:"full_name" binding:"required,notblank,max=150"`
	Email         string `json:"email" binding:"required,email"`
	MonthlySalary string `json:"monthly_salary" binding:"required"`
	JoinDate      string `json:"join_date" binding:"required,datetime=2006-01-02"`
}

type UpdateEmployeeRequest struct {
	FullName      string `json:"full_name" binding:"required,notblank,max=150"`
	Email         string `json:"email" binding:"required,email"`
	MonthlySalary string `json:"monthly_salary" binding:"required"`
	JoinDate      string `json:"join_date" binding:"required,datetime=2006-01-02"`
	IsActive      *bool  `json:"is_active"`
}

type EmployeeResponse struct {
	ID                string  `json:"id"`
	FullName          string  `json:"full_name"`
	Email             string  `json:"email"`
	MonthlySalary     string  `json:"monthly_salary"`
	JoinDate          string  `json:"join_date"`
	IsActive          bool    `json:"is_active"`
	DeviceBound       bool    `json:"device_bound"`
	DeviceFingerprint *string `json:"device_fingerprint,omitempty"`
	DeviceBoundAt     *string `json:"device_bound_at,omitempty"`
}
