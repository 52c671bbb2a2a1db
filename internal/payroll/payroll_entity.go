package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusLocked   = "LOCKED"
	StatusUnlocked = "UNLOCKED"
)

// BreakdownDay is one resolved day frozen into a report.
type BreakdownDay struct {
	Date          string  `json:"date"`
	Weekday       string  `json:"weekday"`
	Status        string  `json:"status"`
	CheckIn       *string `json:"check_in,omitempty"`
	CheckOut      *string `json:"check_out,omitempty"`
	WorkedHours   float64 `json:"worked_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Notes         string  `json:"notes"`
	AdminModified bool    `json:"admin_modified"`
}

// Breakdown is stored as JSONB.
type Breakdown []BreakdownDay

func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Breakdown) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return errors.New("payroll: unsupported breakdown type")
}

type Report struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_employee_month,priority:1"`
	EmployeeName   string          `gorm:"type:varchar(150);not null;default:''"`
	Month          time.Time       `gorm:"type:date;not null;uniqueIndex:uq_payroll_employee_month,priority:2;index"`
	DailyBreakdown Breakdown       `gorm:"type:jsonb;not null"`
	PresentDays    int             `gorm:"not null;default:0"`
	AbsentDays     int             `gorm:"not null;default:0"`
	HalfDays       int             `gorm:"not null;default:0"`
	HolidayDays    int             `gorm:"not null;default:0"`
	LeaveDays      int             `gorm:"not null;default:0"`
	SundayDays     int             `gorm:"not null;default:0"`
	WorkingDays    int             `gorm:"not null;default:0"`
	BaseSalary     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	DailyRate      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	NetSalary      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status         string          `gorm:"type:varchar(10);not null"`
	GeneratedBy    string          `gorm:"type:varchar(64);not null"`
	GeneratedAt    time.Time       `gorm:"not null"`
	UnlockedBy     *string         `gorm:"type:varchar(64)"`
	UnlockedAt     *time.Time
	UnlockReason   *string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Report) TableName() string {
	return "payroll_reports"
}

func (r Report) Locked() bool {
	return r.Status == StatusLocked
}
