package device

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the device-binding view of an employee row.
type Identity struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email             string
	IsActive          bool
	PublicKey         *string
	DeviceFingerprint *string
	DeviceBoundAt     *time.Time
}

func (Identity) TableName() string {
	return "employees"
}

func (i Identity) Bound() bool {
	return i.PublicKey != nil && *i.PublicKey != ""
}
