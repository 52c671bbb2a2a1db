package audit

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionAttendanceManualAdd Action = "ATTENDANCE_MANUAL_ADD"
	ActionAttendanceCorrected Action = "ATTENDANCE_CORRECTED"
	ActionAttendanceDeleted   Action = "ATTENDANCE_DELETED"
	ActionDeviceReset         Action = "DEVICE_RESET"
	ActionPayrollGenerated    Action = "PAYROLL_GENERATED"
	ActionPayrollUnlocked     Action = "PAYROLL_UNLOCKED"
	ActionPayrollReset        Action = "PAYROLL_RESET"
	ActionHolidayDeclared     Action = "HOLIDAY_DECLARED"
	ActionHolidayRemoved      Action = "HOLIDAY_REMOVED"
	ActionLeaveGranted        Action = "LEAVE_GRANTED"
	ActionLeaveRevoked        Action = "LEAVE_REVOKED"
	// ActionServerShutdown is only ever written to the process log.
	ActionServerShutdown Action = "SERVER_SHUTDOWN"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int64     `gorm:"autoIncrement;uniqueIndex;not null"`
	Action     Action    `gorm:"type:varchar(40);not null;index"`
	ActorID    string    `gorm:"type:varchar(64);not null"`
	EmployeeID *string   `gorm:"type:varchar(64);index"`
	SubjectID  *string   `gorm:"type:varchar(64)"`
	Reason     string    `gorm:"type:text;not null;default:''"`
	Meta       string    `gorm:"type:jsonb;not null;default:'{}'"`
	RequestID  string    `gorm:"type:varchar(64)"`
	PrevHash   string    `gorm:"type:char(64);not null;default:''"`
	Hash       string    `gorm:"type:char(64);not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
