package events

import "time"

const DeviceBindingTopic = "hr.device.binding.v1"

const (
	EventDeviceRegistered = "device_registered"
	EventDeviceReset      = "device_reset"
)

type DeviceBindingEvent struct {
	EventType  string    `json:"event_type"`
	EmployeeID string    `json:"employee_id"`
	ActorID    string    `json:"actor_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
