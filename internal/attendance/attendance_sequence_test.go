package attendance

import (
	"testing"
	"time"

	attendanceerrors "go-attendance/internal/attendance/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ev(kind Kind, origin Origin, at string) Event {
	t, _ := time.Parse(time.RFC3339, at)
	return Event{ID: uuid.New(), Kind: kind, Origin: origin, OccurredAt: t}
}

func TestCheckSequence(t *testing.T) {
	in := ev(KindCheckIn, OriginDevice, "2026-03-10T04:00:00Z")
	out := ev(KindCheckOut, OriginDevice, "2026-03-10T12:00:00Z")

	tests := []struct {
		name      string
		day       []Event
		candidate Event
		replaced  *uuid.UUID
		wantErr   error
	}{
		{
			name:      "first check-in",
			candidate: ev(KindCheckIn, OriginDevice, "2026-03-10T04:00:00Z"),
		},
		{
			name:      "second check-in while open",
			day:       []Event{in},
			candidate: ev(KindCheckIn, OriginDevice, "2026-03-10T05:00:00Z"),
			wantErr:   attendanceerrors.ErrDuplicateIntent,
		},
		{
			name:      "check-in after a closed pair",
			day:       []Event{in, out},
			candidate: ev(KindCheckIn, OriginDevice, "2026-03-10T13:00:00Z"),
		},
		{
			name:      "device check-out without check-in",
			candidate: ev(KindCheckOut, OriginDevice, "2026-03-10T12:00:00Z"),
			wantErr:   attendanceerrors.ErrNoOpenCheckIn,
		},
		{
			name:      "device check-out twice",
			day:       []Event{in, out},
			candidate: ev(KindCheckOut, OriginDevice, "2026-03-10T13:00:00Z"),
			wantErr:   attendanceerrors.ErrNoOpenCheckIn,
		},
		{
			name:      "admin check-out before any check-in",
			candidate: ev(KindCheckOut, OriginAdminManual, "2026-03-10T12:00:00Z"),
		},
		{
			name:      "admin check-in inserted before a lone check-out",
			day:       []Event{ev(KindCheckOut, OriginAdminManual, "2026-03-10T12:00:00Z")},
			candidate: ev(KindCheckIn, OriginAdminManual, "2026-03-10T04:00:00Z"),
		},
		{
			name:      "admin check-in inserted before another check-in",
			day:       []Event{in},
			candidate: ev(KindCheckIn, OriginAdminManual, "2026-03-10T03:00:00Z"),
			wantErr:   attendanceerrors.ErrDuplicateIntent,
		},
		{
			name:      "admin check-out next to a check-out",
			day:       []Event{in, out},
			candidate: ev(KindCheckOut, OriginAdminManual, "2026-03-10T11:00:00Z"),
			wantErr:   attendanceerrors.ErrConsecutiveCheckOut,
		},
		{
			name:      "correction replaces its original",
			day:       []Event{in, out},
			candidate: ev(KindCheckIn, OriginAdminCorrection, "2026-03-10T03:30:00Z"),
			replaced:  &in.ID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSequence(tt.day, tt.candidate, tt.replaced)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
