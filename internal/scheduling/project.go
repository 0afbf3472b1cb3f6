package scheduling

import (
	"sort"
	"time"
)

// DateKeyFormat is the layout used for the per-date bucket keys produced by
// Project.
const DateKeyFormat = "2006-01-02"

// DateKey renders a date as a projection bucket key.
func DateKey(t time.Time) string {
	return dateOnly(t).Format(DateKeyFormat)
}

// Slot is the engine's view of an availability slot: who offers it, when it
// repeats, and which portion of the day it covers. StartMinute and EndMinute
// are minutes since midnight with StartMinute < EndMinute.
type Slot struct {
	ID              string
	StaffID         string
	Pattern         Pattern
	StartMinute     int
	EndMinute       int
	BufferMinutes   int
	AppointmentOnly bool
	OfferingIDs     []string
}

// Project merges one-off and recurring slots into a per-date index over the
// window. Each slot is attached to every date its pattern produces; within a
// bucket, slots are ordered by start time with slot ID as the tie-break so
// repeated calls yield identical output.
func Project(slots []Slot, w Window) (map[string][]Slot, error) {
	w, err := NewWindow(w.From, w.To)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]Slot)
	for _, slot := range slots {
		dates, err := Expand(slot.Pattern, w)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			key := DateKey(d)
			buckets[key] = append(buckets[key], slot)
		}
	}

	for key := range buckets {
		bucket := buckets[key]
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].StartMinute != bucket[j].StartMinute {
				return bucket[i].StartMinute < bucket[j].StartMinute
			}
			return bucket[i].ID < bucket[j].ID
		})
	}
	return buckets, nil
}
