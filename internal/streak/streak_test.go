package streak_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"timely/internal/streak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestAdvance_FirstActivity(t *testing.T) {
	today := day(2026, 10, 16)
	got := streak.Advance(today, streak.State{})

	assert.Equal(t, 1, got.Current)
	assert.Equal(t, 1, got.Longest)
	require.NotNil(t, got.LastActive)
	assert.True(t, got.LastActive.Equal(today))
}

func TestAdvance_SameDayIsIdempotent(t *testing.T) {
	today := day(2026, 10, 16)
	states := []streak.State{
		{Current: 1, Longest: 1, LastActive: ptr(today)},
		{Current: 3, Longest: 10, LastActive: ptr(today)},
		{Current: 7, Longest: 7, LastActive: ptr(today)},
	}
	for _, s := range states {
		got := s
		for i := 0; i < 3; i++ {
			got = streak.Advance(today, got)
		}
		assert.Equal(t, s.Current, got.Current)
		assert.Equal(t, s.Longest, got.Longest)
		assert.True(t, got.LastActive.Equal(today))
	}
}

func TestAdvance_Continuation(t *testing.T) {
	today := day(2026, 10, 16)
	yesterday := day(2026, 10, 15)

	got := streak.Advance(today, streak.State{Current: 4, Longest: 9, LastActive: ptr(yesterday)})
	assert.Equal(t, 5, got.Current)
	assert.Equal(t, 9, got.Longest)
	assert.True(t, got.LastActive.Equal(today))

	got = streak.Advance(today, streak.State{Current: 9, Longest: 9, LastActive: ptr(yesterday)})
	assert.Equal(t, 10, got.Current)
	assert.Equal(t, 10, got.Longest)
}

func TestAdvance_Break(t *testing.T) {
	today := day(2026, 10, 16)

	got := streak.Advance(today, streak.State{Current: 6, Longest: 8, LastActive: ptr(day(2026, 10, 14))})
	assert.Equal(t, 1, got.Current)
	assert.Equal(t, 8, got.Longest)
	assert.True(t, got.LastActive.Equal(today))

	got = streak.Advance(today, streak.State{Current: 0, Longest: 0})
	assert.Equal(t, 1, got.Current)
	assert.Equal(t, 1, got.Longest)
}

func TestAdvance_MonthAndYearBoundaries(t *testing.T) {
	got := streak.Advance(day(2027, 1, 1), streak.State{Current: 2, Longest: 2, LastActive: ptr(day(2026, 12, 31))})
	assert.Equal(t, 3, got.Current)

	got = streak.Advance(day(2028, 3, 1), streak.State{Current: 2, Longest: 5, LastActive: ptr(day(2028, 2, 29))})
	assert.Equal(t, 3, got.Current)

	got = streak.Advance(day(2027, 3, 1), streak.State{Current: 2, Longest: 5, LastActive: ptr(day(2027, 2, 27))})
	assert.Equal(t, 1, got.Current)
}

func TestAdvance_FutureLastDayIsNoop(t *testing.T) {
	today := day(2026, 10, 16)
	s := streak.State{Current: 2, Longest: 4, LastActive: ptr(day(2026, 10, 17))}
	got := streak.Advance(today, s)
	assert.Equal(t, s, got)
}

func TestDayOf_DaylightSavingTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08 is only 23 hours long in New York.
	before := time.Date(2026, 3, 7, 23, 30, 0, 0, loc)
	after := time.Date(2026, 3, 8, 23, 30, 0, 0, loc)

	s := streak.Advance(streak.DayOf(before, loc), streak.State{})
	s = streak.Advance(streak.DayOf(after, loc), s)
	assert.Equal(t, 2, s.Current)

	// 2026-11-01 is 25 hours long.
	before = time.Date(2026, 11, 1, 0, 10, 0, 0, loc)
	after = time.Date(2026, 11, 2, 23, 50, 0, 0, loc)
	s = streak.Advance(streak.DayOf(before, loc), streak.State{})
	s = streak.Advance(streak.DayOf(after, loc), s)
	assert.Equal(t, 2, s.Current)
}

func TestDayOf(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	instant := time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

	assert.True(t, streak.DayOf(instant, time.UTC).Equal(day(2026, 10, 16)))
	assert.True(t, streak.DayOf(instant, tokyo).Equal(day(2026, 10, 17)))
	assert.True(t, streak.DayOf(instant, nil).Equal(day(2026, 10, 16)))
	assert.True(t, streak.SameDay(day(2026, 10, 16), day(2026, 10, 16).In(tokyo)))
}
