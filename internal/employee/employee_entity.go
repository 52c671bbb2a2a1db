package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FullName          string          `gorm:"type:varchar(150);not null"`
	Email             string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	MonthlySalary     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	JoinDate          time.Time       `gorm:"type:date;not null"`
	IsActive          bool            `gorm:"not null;default:true"`
	PublicKey         *string         `gorm:"type:text"`
	DeviceFingerprint *string         `gorm:"type:varchar(255)"`
	DeviceBoundAt     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Employee) TableName() string {
	return "employees"
}

// HasDevice reports whether a signing key is currently bound.
func (e Employee) HasDevice() bool {
	return e.PublicKey != nil && *e.PublicKey != ""
}
