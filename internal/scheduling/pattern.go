package scheduling

import (
	"fmt"
	"time"
)

// ScheduleType discriminates how an availability slot repeats.
type ScheduleType string

const (
	ScheduleOneTime  ScheduleType = "one_time"
	ScheduleWeekly   ScheduleType = "weekly"
	ScheduleBiweekly ScheduleType = "biweekly"
	ScheduleMonthly  ScheduleType = "monthly"
)

// BiweeklyGroup selects which week-of-month buckets a biweekly pattern fires in.
type BiweeklyGroup string

const (
	GroupFirstThird   BiweeklyGroup = "first_third"
	GroupSecondFourth BiweeklyGroup = "second_fourth"
)

// MonthlyOccurrence is the ordinal position of a weekday within its month.
type MonthlyOccurrence string

const (
	OccurrenceFirst  MonthlyOccurrence = "first"
	OccurrenceSecond MonthlyOccurrence = "second"
	OccurrenceThird  MonthlyOccurrence = "third"
	OccurrenceFourth MonthlyOccurrence = "fourth"
	OccurrenceLast   MonthlyOccurrence = "last"
)

var occurrenceOrdinals = map[MonthlyOccurrence]int{
	OccurrenceFirst:  1,
	OccurrenceSecond: 2,
	OccurrenceThird:  3,
	OccurrenceFourth: 4,
}

// Pattern describes which calendar dates a slot is active on. The populated
// fields depend on Type: one_time patterns carry Date, recurring patterns
// carry Weekday plus their type-specific selectors. EndsOn, when set, is the
// last date the pattern may ever produce.
type Pattern struct {
	Type          ScheduleType
	Weekday       *time.Weekday
	Group         BiweeklyGroup
	SkipFifthWeek bool
	Occurrence    MonthlyOccurrence
	Date          time.Time
	EndsOn        *time.Time
}

// InvalidPatternError reports a pattern whose fields do not satisfy the
// requirements of its schedule type.
type InvalidPatternError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("scheduling: invalid pattern: %s: %s", e.Field, e.Reason)
}

func invalidPattern(field, reason string) *InvalidPatternError {
	return &InvalidPatternError{Field: field, Reason: reason}
}

// Validate checks that the pattern carries exactly the fields its schedule
// type requires. It has no side effects and never mutates the pattern.
func (p Pattern) Validate() error {
	switch p.Type {
	case ScheduleOneTime:
		if p.Date.IsZero() {
			return invalidPattern("date", "required for one_time schedules")
		}
		if p.Weekday != nil {
			return invalidPattern("weekday", "must not be set for one_time schedules")
		}
		if p.EndsOn != nil && dateOnly(*p.EndsOn).Before(dateOnly(p.Date)) {
			return invalidPattern("recurrence_end_date", "precedes the specific date")
		}
		return nil
	case ScheduleWeekly:
		return p.validateRecurring(false, false)
	case ScheduleBiweekly:
		return p.validateRecurring(true, false)
	case ScheduleMonthly:
		return p.validateRecurring(false, true)
	default:
		return invalidPattern("schedule_type", fmt.Sprintf("unknown type %q", p.Type))
	}
}

func (p Pattern) validateRecurring(needsGroup, needsOccurrence bool) error {
	if !p.Date.IsZero() {
		return invalidPattern("date", "must not be set for recurring schedules")
	}
	if p.Weekday == nil {
		return invalidPattern("weekday", "required for recurring schedules")
	}
	if *p.Weekday < time.Sunday || *p.Weekday > time.Saturday {
		return invalidPattern("weekday", "out of range")
	}
	if needsGroup {
		switch p.Group {
		case GroupFirstThird, GroupSecondFourth:
		default:
			return invalidPattern("biweekly_group", "required for biweekly schedules")
		}
	} else if p.Group != "" {
		return invalidPattern("biweekly_group", "only valid for biweekly schedules")
	}
	if needsOccurrence {
		switch p.Occurrence {
		case OccurrenceFirst, OccurrenceSecond, OccurrenceThird, OccurrenceFourth, OccurrenceLast:
		default:
			return invalidPattern("monthly_occurrence", "required for monthly schedules")
		}
	} else if p.Occurrence != "" {
		return invalidPattern("monthly_occurrence", "only valid for monthly schedules")
	}
	return nil
}

// matches reports whether the pattern is active on the given date. The date
// must already be midnight-normalized.
func (p Pattern) matches(d time.Time) bool {
	switch p.Type {
	case ScheduleOneTime:
		return d.Equal(dateOnly(p.Date))
	case ScheduleWeekly:
		return d.Weekday() == *p.Weekday
	case ScheduleBiweekly:
		return p.matchesBiweekly(d)
	case ScheduleMonthly:
		return p.matchesMonthly(d)
	default:
		return false
	}
}

func (p Pattern) matchesBiweekly(d time.Time) bool {
	if d.Weekday() != *p.Weekday {
		return false
	}
	week := weekOfMonth(d)
	if week == 5 {
		// Week 5 only exists for the tail days of longer months. A slot
		// configured to skip it never fires there; otherwise it fires only
		// when the group's parity covers odd weeks.
		if p.SkipFifthWeek {
			return false
		}
		return p.Group == GroupFirstThird
	}
	switch p.Group {
	case GroupFirstThird:
		return week == 1 || week == 3
	case GroupSecondFourth:
		return week == 2 || week == 4
	default:
		return false
	}
}

func (p Pattern) matchesMonthly(d time.Time) bool {
	if d.Weekday() != *p.Weekday {
		return false
	}
	if p.Occurrence == OccurrenceLast {
		// The final occurrence of a weekday is the one with no same-weekday
		// date seven days later in the same month.
		return d.AddDate(0, 0, 7).Month() != d.Month()
	}
	return weekdayOrdinal(d) == occurrenceOrdinals[p.Occurrence]
}

// weekOfMonth buckets a date into ceil(day/7): days 1-7 are week 1, days
// 8-14 week 2, and so on. This is deliberately not the ISO calendar week;
// the booking rules are defined in terms of these fixed 7-day buckets.
func weekOfMonth(d time.Time) int {
	return (d.Day()-1)/7 + 1
}

// weekdayOrdinal counts which occurrence of its weekday the date is within
// its month, starting at 1.
func weekdayOrdinal(d time.Time) int {
	return (d.Day()-1)/7 + 1
}

// Midnight truncates a timestamp to its calendar date at midnight UTC. All
// engine comparisons operate on these normalized values.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return Midnight(t)
}
