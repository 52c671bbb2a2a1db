// Package signature defines the signed check-in protocol shared by devices
// and the server: which string gets signed and how it is verified.
package signature

import (
	"fmt"
	"strings"
	"time"

	"go-attendance/internal/shared/clock"
)

type Intent string

const (
	IntentCheckIn  Intent = "check-in"
	IntentCheckOut Intent = "check-out"
)

func ParseIntent(s string) (Intent, error) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentCheckIn:
		return IntentCheckIn, nil
	case IntentCheckOut:
		return IntentCheckOut, nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// BuildMessage returns the canonical string a device signs:
// "{actorID}:{YYYY-MM-DD}:{intent}", with the date taken in the reporting zone.
func BuildMessage(actorID string, at time.Time, intent Intent, zone *clock.Zone) string {
	return actorID + ":" + zone.FormatDate(at) + ":" + string(intent)
}
