package attendance

import (
	"time"

	"github.com/google/uuid"
)

// SignedSubmission is a device check-in or check-out.
type SignedSubmission struct {
	Signature    string   `json:"signature" binding:"required,notblank"`
	DataToVerify string   `json:"data_to_verify" binding:"required,notblank"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

type ManualEventRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Intent     string `json:"intent" binding:"required,oneof=check-in check-out"`
	Timestamp  string `json:"timestamp" binding:"required"`
	Reason     string `json:"reason" binding:"required,notblank,max=500"`
}

type CorrectEventRequest struct {
	Intent    *string `json:"intent" binding:"omitempty,oneof=check-in check-out"`
	Timestamp *string `json:"timestamp"`
	Reason    string  `json:"reason" binding:"required,notblank,max=500"`
}

type DeleteEventRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

type DayQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// RecordCommand is a fully resolved event ready for the ledger.
type RecordCommand struct {
	EmployeeID        uuid.UUID
	Kind              Kind
	OccurredAt        time.Time
	Origin            Origin
	SignatureVerified bool
	SupersedesID      *uuid.UUID
	ActorID           string
	Reason            string
	SourceNote        string
	Latitude          *float64
	Longitude         *float64
}

type EventResponse struct {
	ID                string   `json:"id"`
	EmployeeID        string   `json:"employee_id"`
	Kind              string   `json:"kind"`
	OccurredAt        string   `json:"occurred_at"`
	WorkDate          string   `json:"work_date"`
	Origin            string   `json:"origin"`
	SignatureVerified bool     `json:"signature_verified"`
	SupersedesID      *string  `json:"supersedes_id,omitempty"`
	ActorID           string   `json:"actor_id"`
	Reason            *string  `json:"reason,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
}
