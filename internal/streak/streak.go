// Package streak computes consecutive-day activity counters.
//
// Days are civil dates. A Day is represented as a time.Time at midnight UTC
// carrying the year, month and day of the local calendar date it stands for,
// so "yesterday" is plain calendar arithmetic and daylight-saving transitions
// in the reference timezone cannot shift it.
package streak

import "time"

// State is the streak part of a user record.
type State struct {
	Current    int
	Longest    int
	LastActive *time.Time
}

// DayOf returns the civil day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b denote the same civil day.
func SameDay(a, b time.Time) bool {
	return civil(a).Equal(civil(b))
}

// Advance applies one activity on today to s. today and s.LastActive are
// days as returned by DayOf.
//
// A missing or older-than-yesterday last day restarts the streak at 1, an
// activity already credited today changes nothing, and an activity the day
// after the last one extends the streak. Longest never drops below Current.
func Advance(today time.Time, s State) State {
	today = civil(today)

	next := s
	switch {
	case s.LastActive == nil:
		next.Current = 1
	case civil(*s.LastActive).Equal(today), civil(*s.LastActive).After(today):
		// Already credited. A last day in the future only happens after the
		// reference timezone moved backwards; it is treated the same way.
		next.Longest = max(s.Longest, s.Current)
		return next
	case civil(*s.LastActive).Equal(today.AddDate(0, 0, -1)):
		next.Current = s.Current + 1
	default:
		next.Current = 1
	}

	last := today
	next.LastActive = &last
	next.Longest = max(s.Longest, next.Current)
	return next
}

// civil normalizes a stored day. Stores may hand the instant back in any
// location, so the date is read in UTC where it was written.
func civil(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
