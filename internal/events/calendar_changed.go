package events

import "time"

const CalendarChangedTopic = "hr.calendar.changed.v1"

const (
	EventHolidayDeclared = "holiday_declared"
	EventHolidayRemoved  = "holiday_removed"
)

// CalendarChangedEvent tells readers that the status of every employee on
// Date may have changed.
type CalendarChangedEvent struct {
	EventType  string    `json:"event_type"`
	HolidayID  string    `json:"holiday_id"`
	Date       string    `json:"date"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
