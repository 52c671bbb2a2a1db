package attendance

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindCheckIn   Kind = "CHECK_IN"
	KindCheckOut  Kind = "CHECK_OUT"
	KindTombstone Kind = "TOMBSTONE"
)

type Origin string

const (
	OriginDevice          Origin = "DEVICE"
	OriginAdminManual     Origin = "ADMIN_MANUAL"
	OriginAdminCorrection Origin = "ADMIN_CORRECTION"
	OriginAdminDeletion   Origin = "ADMIN_DELETION"
)

// IsAdmin reports whether the event was entered by an administrator.
func (o Origin) IsAdmin() bool {
	return o != OriginDevice
}

// Event is one row of the append-only attendance ledger. Rows are never
// updated; corrections and deletions append a new row that supersedes the
// original.
type Event struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Seq               int64      `gorm:"autoIncrement;uniqueIndex;not null"`
	EmployeeID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_attendance_employee_day,priority:1"`
	Kind              Kind       `gorm:"type:varchar(16);not null"`
	OccurredAt        time.Time  `gorm:"not null"`
	WorkDate          time.Time  `gorm:"type:date;not null;index:idx_attendance_employee_day,priority:2"`
	Origin            Origin     `gorm:"type:varchar(24);not null"`
	SignatureVerified bool       `gorm:"not null;default:false"`
	SupersedesID      *uuid.UUID `gorm:"type:uuid;uniqueIndex:uq_attendance_supersedes"`
	ActorID           string     `gorm:"type:varchar(64);not null"`
	Reason            *string    `gorm:"type:text"`
	SourceNote        string     `gorm:"type:varchar(255);not null;default:''"`
	Latitude          *float64
	Longitude         *float64
	CreatedAt         time.Time `gorm:"not null"`
}

func (Event) TableName() string {
	return "attendance_events"
}

// EmployeeSnapshot is the employee row as seen under the ledger's row lock.
type EmployeeSnapshot struct {
	ID        uuid.UUID
	Email     string
	IsActive  bool
	PublicKey *string
	JoinDate  time.Time
}
