package scheduling

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func window(t *testing.T, from, to time.Time) Window {
	t.Helper()
	w, err := NewWindow(from, to)
	require.NoError(t, err)
	return w
}

func weekdayPtr(d time.Weekday) *time.Weekday {
	return &d
}

func TestExpandWeeklyReturnsEveryMatchingWeekday(t *testing.T) {
	pattern := Pattern{Type: ScheduleWeekly, Weekday: weekdayPtr(time.Wednesday)}
	w := window(t, date(2024, time.January, 1), date(2024, time.January, 31))

	dates, err := Expand(pattern, w)
	require.NoError(t, err)

	expected := []time.Time{
		date(2024, time.January, 3),
		date(2024, time.January, 10),
		date(2024, time.January, 17),
		date(2024, time.January, 24),
		date(2024, time.January, 31),
	}
	assert.Equal(t, expected, dates)
}

func TestExpandIsDeterministic(t *testing.T) {
	pattern := Pattern{Type: ScheduleBiweekly, Weekday: weekdayPtr(time.Monday), Group: GroupFirstThird}
	w := window(t, date(2024, time.January, 1), date(2024, time.June, 30))

	first, err := Expand(pattern, w)
	require.NoError(t, err)
	second, err := Expand(pattern, w)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExpandOneTimeOnlyMatchesItsDate(t *testing.T) {
	pattern := Pattern{Type: ScheduleOneTime, Date: date(2024, time.March, 15)}

	dates, err := Expand(pattern, window(t, date(2024, time.March, 1), date(2024, time.March, 31)))
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, date(2024, time.March, 15), dates[0])

	dates, err = Expand(pattern, window(t, date(2024, time.April, 1), date(2024, time.April, 30)))
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestExpandBiweeklySkipFifthWeekExcludesWeekFiveMonday(t *testing.T) {
	// January 2024 has Mondays on days 1, 8, 15, 22 and 29; day 29 falls in
	// the fifth 7-day bucket.
	w := window(t, date(2024, time.January, 1), date(2024, time.January, 31))

	skipping := Pattern{
		Type:          ScheduleBiweekly,
		Weekday:       weekdayPtr(time.Monday),
		Group:         GroupFirstThird,
		SkipFifthWeek: true,
	}
	dates, err := Expand(skipping, w)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.January, 1), date(2024, time.January, 15)}, dates)

	including := skipping
	including.SkipFifthWeek = false
	dates, err = Expand(including, w)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, time.January, 1),
		date(2024, time.January, 15),
		date(2024, time.January, 29),
	}, dates)
}

func TestExpandBiweeklySecondFourthNeverMatchesWeekFive(t *testing.T) {
	pattern := Pattern{
		Type:    ScheduleBiweekly,
		Weekday: weekdayPtr(time.Monday),
		Group:   GroupSecondFourth,
	}
	dates, err := Expand(pattern, window(t, date(2024, time.January, 1), date(2024, time.January, 31)))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.January, 8), date(2024, time.January, 22)}, dates)
}

func TestExpandMonthlyLastFriday(t *testing.T) {
	pattern := Pattern{
		Type:       ScheduleMonthly,
		Weekday:    weekdayPtr(time.Friday),
		Occurrence: OccurrenceLast,
	}
	dates, err := Expand(pattern, window(t, date(2024, time.February, 1), date(2024, time.February, 29)))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.February, 23)}, dates)
}

func TestExpandMonthlyMissingOccurrenceYieldsNothing(t *testing.T) {
	// February 2024 has only four Thursdays, so a fifth-bucket occurrence
	// can never exist; asking for the fourth of a weekday that only occurs
	// four times still works, while a month whose count falls short simply
	// contributes nothing.
	fourth := Pattern{
		Type:       ScheduleMonthly,
		Weekday:    weekdayPtr(time.Thursday),
		Occurrence: OccurrenceFourth,
	}
	dates, err := Expand(fourth, window(t, date(2024, time.February, 1), date(2024, time.February, 29)))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.February, 22)}, dates)

	// March 2024 starts on a Friday: the fourth Monday is March 25, and a
	// window clipped before it holds no fourth-Monday date at all.
	clipped := Pattern{
		Type:       ScheduleMonthly,
		Weekday:    weekdayPtr(time.Monday),
		Occurrence: OccurrenceFourth,
	}
	dates, err = Expand(clipped, window(t, date(2024, time.March, 1), date(2024, time.March, 24)))
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestExpandHonorsRecurrenceEndDate(t *testing.T) {
	end := date(2024, time.January, 17)
	pattern := Pattern{Type: ScheduleWeekly, Weekday: weekdayPtr(time.Wednesday), EndsOn: &end}

	dates, err := Expand(pattern, window(t, date(2024, time.January, 1), date(2024, time.January, 31)))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, time.January, 3), date(2024, time.January, 10), date(2024, time.January, 17)}, dates)
}

func TestExpandRecurrenceEndedBeforeWindowYieldsNothing(t *testing.T) {
	end := date(2024, time.January, 10)
	pattern := Pattern{Type: ScheduleWeekly, Weekday: weekdayPtr(time.Wednesday), EndsOn: &end}

	dates, err := Expand(pattern, window(t, date(2024, time.February, 1), date(2024, time.February, 29)))
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	pattern := Pattern{Type: ScheduleWeekly, Weekday: weekdayPtr(time.Monday)}
	_, err := Expand(pattern, Window{From: date(2024, time.February, 1), To: date(2024, time.January, 1)})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestExpandStaysWithinBoundsForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(20240115))
	groups := []BiweeklyGroup{GroupFirstThird, GroupSecondFourth}
	occurrences := []MonthlyOccurrence{OccurrenceFirst, OccurrenceSecond, OccurrenceThird, OccurrenceFourth, OccurrenceLast}

	for i := 0; i < 500; i++ {
		from := date(2024, time.January, 1).AddDate(0, 0, rng.Intn(730))
		to := from.AddDate(0, 0, rng.Intn(120))
		w := window(t, from, to)

		pattern := Pattern{Weekday: weekdayPtr(time.Weekday(rng.Intn(7)))}
		switch rng.Intn(3) {
		case 0:
			pattern.Type = ScheduleWeekly
		case 1:
			pattern.Type = ScheduleBiweekly
			pattern.Group = groups[rng.Intn(len(groups))]
			pattern.SkipFifthWeek = rng.Intn(2) == 0
		case 2:
			pattern.Type = ScheduleMonthly
			pattern.Occurrence = occurrences[rng.Intn(len(occurrences))]
		}
		if rng.Intn(3) == 0 {
			end := from.AddDate(0, 0, rng.Intn(60))
			pattern.EndsOn = &end
		}

		dates, err := Expand(pattern, w)
		require.NoError(t, err)

		prev := time.Time{}
		for _, d := range dates {
			assert.False(t, d.Before(w.From), "date %v before window start %v", d, w.From)
			assert.False(t, d.After(w.To), "date %v after window end %v", d, w.To)
			if pattern.EndsOn != nil {
				assert.False(t, d.After(*pattern.EndsOn), "date %v after end date %v", d, *pattern.EndsOn)
			}
			if !prev.IsZero() {
				assert.True(t, d.After(prev), "dates not strictly increasing: %v then %v", prev, d)
			}
			prev = d
		}
	}
}

func TestNextOccurrenceMatchesFirstExpandedDate(t *testing.T) {
	pattern := Pattern{
		Type:       ScheduleMonthly,
		Weekday:    weekdayPtr(time.Tuesday),
		Occurrence: OccurrenceSecond,
	}
	w := window(t, date(2024, time.January, 5), date(2024, time.March, 31))

	dates, err := Expand(pattern, w)
	require.NoError(t, err)
	require.NotEmpty(t, dates)

	next, ok, err := NextOccurrence(pattern, w)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dates[0], next)
}

func TestNextOccurrenceReturnsFalseWhenWindowHasNoMatch(t *testing.T) {
	pattern := Pattern{Type: ScheduleWeekly, Weekday: weekdayPtr(time.Sunday)}
	// Monday through Saturday only.
	next, ok, err := NextOccurrence(pattern, window(t, date(2024, time.January, 1), date(2024, time.January, 6)))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, next.IsZero())
}
