package attendance

import (
	"sort"

	attendanceerrors "go-attendance/internal/attendance/errors"

	"github.com/google/uuid"
)

// checkSequence validates candidate against the effective events of its day.
// replaced is left out of the day when the candidate supersedes it.
//
// Only the candidate's neighbours are inspected: an already valid day stays
// valid when no neighbour repeats the candidate's kind. Device check-outs
// additionally need an open check-in right before them; admins may enter a
// check-out first and add the matching check-in afterwards.
func checkSequence(day []Event, candidate Event, replaced *uuid.UUID) error {
	merged := make([]Event, 0, len(day)+1)
	for _, e := range day {
		if replaced != nil && e.ID == *replaced {
			continue
		}
		merged = append(merged, e)
	}
	merged = append(merged, candidate)
	// stable: the candidate sorts after existing events at the same instant
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].OccurredAt.Before(merged[j].OccurredAt)
	})

	idx := 0
	for i := range merged {
		if merged[i].ID == candidate.ID {
			idx = i
			break
		}
	}

	var prev, next *Event
	if idx > 0 {
		prev = &merged[idx-1]
	}
	if idx+1 < len(merged) {
		next = &merged[idx+1]
	}

	switch candidate.Kind {
	case KindCheckIn:
		if (prev != nil && prev.Kind == KindCheckIn) || (next != nil && next.Kind == KindCheckIn) {
			return attendanceerrors.ErrDuplicateIntent
		}
	case KindCheckOut:
		if candidate.Origin == OriginDevice && (prev == nil || prev.Kind != KindCheckIn) {
			return attendanceerrors.ErrNoOpenCheckIn
		}
		if (prev != nil && prev.Kind == KindCheckOut) || (next != nil && next.Kind == KindCheckOut) {
			return attendanceerrors.ErrConsecutiveCheckOut
		}
	}
	return nil
}
