package main

import (
	"math"
	"time"
)

const dateFormat = "2006-01-02"

// dayBMRPolicy selects how much of the effective BMR counts as burned for
// one calendar day. Measurement windows almost never align to whole days —
// they start at an arbitrary weigh-in timestamp and end at "now" or at a
// past midnight — so the first and last day of a window get scaled burns.
type dayBMRPolicy int

const (
	// fullPastDay: the entire 24h elapsed; count the whole effective BMR.
	fullPastDay dayBMRPolicy = iota
	// firstPartialDay: the window opened partway through this (past) day;
	// count only the fraction from the window start to midnight.
	firstPartialDay
	// firstDayIsToday: the window opened today; count only the hours from
	// the window start to now.
	firstDayIsToday
	// todayOngoing: today, but the window opened on an earlier day; count
	// the hours from midnight to now.
	todayOngoing
)

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayKey formats a time as the local calendar date string used to key
// events and impact records.
func dayKey(t time.Time) string {
	return t.Format(dateFormat)
}

// classifyDay picks the BMR policy for one calendar date inside a
// measurement window [windowStart, now].
func classifyDay(date string, windowStart, now time.Time) dayBMRPolicy {
	today := dayKey(now)
	first := dayKey(windowStart)
	switch {
	case date == today && date == first:
		return firstDayIsToday
	case date == today:
		return todayOngoing
	case date == first:
		return firstPartialDay
	default:
		return fullPastDay
	}
}

// bmrBurnedForDay computes the calories of resting burn attributed to one
// calendar date under the given policy. The result is rounded to a whole
// kcal before any kg conversion — that matches the granularity users see
// and keeps repeated computations of the same day bit-stable, at the cost
// of sub-kcal drift.
func bmrBurnedForDay(effBMR float64, policy dayBMRPolicy, windowStart, now time.Time) float64 {
	var hours float64
	switch policy {
	case fullPastDay:
		hours = 24
	case firstPartialDay:
		midnight := startOfDay(windowStart).AddDate(0, 0, 1)
		hours = midnight.Sub(windowStart).Hours()
	case firstDayIsToday:
		hours = now.Sub(windowStart).Hours()
	case todayOngoing:
		hours = now.Sub(startOfDay(now)).Hours()
	}
	if hours < 0 {
		hours = 0
	}
	return math.Round(effBMR / 24.0 * hours)
}

// computeDayImpact aggregates one calendar day's logged events against the
// day's BMR burn and returns the net balance as a mass delta in kg.
//
// ok=false means the day is unobserved: zero intake and zero expenditure
// events. Unobserved days are assumed net-zero (the user didn't log, not
// "the user ate nothing") and must not be recorded or counted toward a
// calibration window. bmrBurned is also returned so calibration can
// accumulate the total burn it is solving for.
func computeDayImpact(date string, events []energyEvent, effBMR float64, policy dayBMRPolicy, windowStart, now time.Time) (impactKG, bmrBurned float64, ok bool) {
	var kcalIn, kcalOut float64
	observed := false
	for _, ev := range events {
		if dayKey(time.UnixMilli(ev.TimestampMS)) != date {
			continue
		}
		observed = true
		if ev.Type == "expenditure" {
			kcalOut += ev.Kcal
		} else {
			kcalIn += ev.Kcal
		}
	}
	if !observed {
		return 0, 0, false
	}

	bmrBurned = bmrBurnedForDay(effBMR, policy, windowStart, now)
	impactKG = kcalToKG(kcalIn - bmrBurned - kcalOut)
	return impactKG, bmrBurned, true
}

// computeDailyImpact is the standalone entry point used by the live daily
// summary: full-day burn for past dates, midnight-to-now burn for today.
// Returns the impact, the BMR kcal burned over the covered span, and
// ok=false for an unobserved day.
func computeDailyImpact(date string, events []energyEvent, p weightProfile, now time.Time) (impactKG, bmrBurned float64, ok bool) {
	policy := fullPastDay
	if date == dayKey(now) {
		policy = todayOngoing
	}
	return computeDayImpact(date, events, effectiveBMR(p), policy, startOfDay(now), now)
}
