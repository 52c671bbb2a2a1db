package calendar

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRevoked  = "REVOKED"
)

// Holiday is a company-wide non-working day.
type Holiday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uq_holidays_date"`
	Name        string    `gorm:"type:varchar(120);not null"`
	Description string    `gorm:"type:text"`
	CreatedBy   string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}

// Leave is an approved absence over an inclusive date range.
type Leave struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`
	LeaveType  string     `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	StartDate  time.Time  `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate    time.Time  `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	TotalDays  int        `gorm:"type:int;not null;default:1"`
	Reason     string     `gorm:"type:text"`
	Status     string     `gorm:"type:varchar(20);not null;default:'APPROVED'"`
	ApprovedBy string     `gorm:"type:varchar(64);not null"`
	ApprovedAt time.Time  `gorm:"not null"`
	RevokedBy  *string    `gorm:"type:varchar(64)"`
	RevokedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Leave) TableName() string {
	return "leaves"
}

// ApprovedLeave is one day of an approved leave.
type ApprovedLeave struct {
	EmployeeID uuid.UUID
	Date       time.Time
	LeaveType  string
}
