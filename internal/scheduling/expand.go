package scheduling

import (
	"errors"
	"time"
)

// ErrInvalidWindow indicates a window whose start date falls after its end.
var ErrInvalidWindow = errors.New("scheduling: window start is after window end")

// Window is an inclusive range of calendar dates over which recurrence is
// evaluated. Times of day are ignored; only the calendar date matters.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow normalizes both bounds to midnight UTC and rejects inverted
// ranges.
func NewWindow(from, to time.Time) (Window, error) {
	w := Window{From: dateOnly(from), To: dateOnly(to)}
	if w.From.After(w.To) {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

// bounds returns the effective iteration range for a pattern within the
// window, clamping the upper bound to the pattern's end date when set. The
// boolean is false when the clamp leaves nothing to iterate; a recurrence
// that ended before the window is an empty result, not a caller error.
func (w Window) bounds(p Pattern) (time.Time, time.Time, bool, error) {
	from := dateOnly(w.From)
	to := dateOnly(w.To)
	if from.After(to) {
		return time.Time{}, time.Time{}, false, ErrInvalidWindow
	}
	if p.EndsOn != nil {
		if end := dateOnly(*p.EndsOn); end.Before(to) {
			to = end
		}
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, false, nil
	}
	return from, to, true, nil
}

// Expand produces every calendar date within the window on which the pattern
// is active, in strictly increasing order. The result is a pure function of
// its inputs: expanding the same pattern over the same window always yields
// the identical sequence.
//
// A month that lacks the requested monthly occurrence simply contributes no
// date, and a window with no matches yields an empty slice; neither is an
// error. Errors are reserved for malformed patterns and inverted windows.
func Expand(p Pattern, w Window) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	from, to, ok, err := w.bounds(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if p.matches(d) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// NextOccurrence returns the earliest date within the window on which the
// pattern is active. It walks the window only as far as the first match, so
// callers that need a single projected instance (a day view, for example) do
// not pay for a full expansion. The boolean is false when the window holds
// no occurrence; that is a normal outcome, not an error.
func NextOccurrence(p Pattern, w Window) (time.Time, bool, error) {
	if err := p.Validate(); err != nil {
		return time.Time{}, false, err
	}
	from, to, ok, err := w.bounds(p)
	if err != nil {
		return time.Time{}, false, err
	}
	if !ok {
		return time.Time{}, false, nil
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if p.matches(d) {
			return d, true, nil
		}
	}
	return time.Time{}, false, nil
}
