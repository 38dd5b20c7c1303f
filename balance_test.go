package main

import (
	"math"
	"testing"
	"time"
)

/* ─── Test fixtures ──────────────────────────────────────────────────── */

// localDay constructs a local-time instant on the given date at the given
// hour. All engine date math is local-calendar based, so test fixtures build
// their timestamps in time.Local to stay deterministic across timezones.
func localDay(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}

// intakeAt and burnAt build minimal energy events for engine tests.
func intakeAt(at time.Time, kcal float64) energyEvent {
	return energyEvent{Type: "intake", Kcal: kcal, TimestampMS: at.UnixMilli()}
}

func burnAt(at time.Time, kcal float64) energyEvent {
	return energyEvent{Type: "expenditure", Kcal: kcal, TimestampMS: at.UnixMilli()}
}

/* ─── Day classification tests ───────────────────────────────────────── */

// TestClassifyDay covers all four branches of the day-BMR policy: the
// window's first day, today, the overlap of the two, and a plain past day.
func TestClassifyDay(t *testing.T) {
	windowStart := localDay(2026, 8, 1, 9)
	now := localDay(2026, 8, 5, 14)

	tests := []struct {
		name string
		date string
		want dayBMRPolicy
	}{
		{"window start day", "2026-08-01", firstPartialDay},
		{"middle day", "2026-08-03", fullPastDay},
		{"today", "2026-08-05", todayOngoing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyDay(tc.date, windowStart, now); got != tc.want {
				t.Errorf("classifyDay(%s) = %v, want %v", tc.date, got, tc.want)
			}
		})
	}

	// Window opened today: start day and today coincide.
	sameDayNow := localDay(2026, 8, 1, 20)
	if got := classifyDay("2026-08-01", windowStart, sameDayNow); got != firstDayIsToday {
		t.Errorf("classifyDay(start==today) = %v, want firstDayIsToday", got)
	}
}

/* ─── BMR scaling tests ──────────────────────────────────────────────── */

// TestBMRBurnedForDay verifies the hour scaling per policy with an effective
// BMR of 2400 kcal (100 kcal/h, so expected burns are easy to read off).
func TestBMRBurnedForDay(t *testing.T) {
	const effBMR = 2400.0

	tests := []struct {
		name        string
		policy      dayBMRPolicy
		windowStart time.Time
		now         time.Time
		want        float64
	}{
		{
			"full past day counts 24h",
			fullPastDay, localDay(2026, 8, 1, 9), localDay(2026, 8, 5, 14),
			2400,
		},
		{
			"first partial day counts start to midnight",
			firstPartialDay, localDay(2026, 8, 1, 18), localDay(2026, 8, 5, 14),
			600, // 6 hours remaining
		},
		{
			"first day is today counts start to now",
			firstDayIsToday, localDay(2026, 8, 1, 8), localDay(2026, 8, 1, 20),
			1200, // 12 hours
		},
		{
			"today ongoing counts midnight to now",
			todayOngoing, localDay(2026, 8, 1, 9), localDay(2026, 8, 5, 6),
			600, // 6 hours
		},
		{
			"clock skew floors at zero",
			firstDayIsToday, localDay(2026, 8, 1, 20), localDay(2026, 8, 1, 19),
			0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := bmrBurnedForDay(effBMR, tc.policy, tc.windowStart, tc.now)
			if got != tc.want {
				t.Errorf("bmrBurnedForDay = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestBMRBurnedForDay_RoundsToWholeKcal verifies the burn is rounded to an
// integer kcal before any downstream kg conversion: 1748.75 kcal over a full
// day must come back as exactly 1749.
func TestBMRBurnedForDay_RoundsToWholeKcal(t *testing.T) {
	got := bmrBurnedForDay(1748.75, fullPastDay, localDay(2026, 8, 1, 0), localDay(2026, 8, 5, 0))
	if got != 1749 {
		t.Errorf("bmrBurnedForDay(1748.75, fullPastDay) = %v, want 1749", got)
	}
}

/* ─── Day impact tests ───────────────────────────────────────────────── */

// TestComputeDayImpact_UnobservedDay verifies a day with zero events returns
// ok=false rather than a net-deficit impact — the user didn't log, they
// didn't fast.
func TestComputeDayImpact_UnobservedDay(t *testing.T) {
	events := []energyEvent{intakeAt(localDay(2026, 8, 2, 12), 1600)}
	_, _, ok := computeDayImpact("2026-08-03", events, 1748.75, fullPastDay,
		localDay(2026, 8, 1, 0), localDay(2026, 8, 5, 0))
	if ok {
		t.Error("expected ok=false for a day with no events, got ok=true")
	}
}

// TestComputeDayImpact_FullPastDay verifies the net balance for the spec's
// reference day: 1600 in, 100 out, 1749 kcal burned (rounded from 1748.75)
// → (1600 - 1749 - 100) / 7700 kg.
func TestComputeDayImpact_FullPastDay(t *testing.T) {
	day := localDay(2026, 8, 2, 0)
	events := []energyEvent{
		intakeAt(day.Add(12*time.Hour), 1600),
		burnAt(day.Add(18*time.Hour), 100),
	}
	impact, burned, ok := computeDayImpact("2026-08-02", events, 1748.75, fullPastDay,
		localDay(2026, 8, 1, 0), localDay(2026, 8, 5, 0))
	if !ok {
		t.Fatal("expected ok=true, got ok=false")
	}
	if burned != 1749 {
		t.Errorf("bmrBurned = %v, want 1749", burned)
	}
	want := (1600.0 - 1749 - 100) / 7700
	if math.Abs(impact-want) > 1e-12 {
		t.Errorf("impact = %v, want %v", impact, want)
	}
}

// TestComputeDayImpact_FiltersOtherDays verifies only events on the target
// local calendar date are aggregated — neighbors a minute across midnight
// belong to their own days.
func TestComputeDayImpact_FiltersOtherDays(t *testing.T) {
	day := localDay(2026, 8, 2, 0)
	events := []energyEvent{
		intakeAt(day.Add(-time.Minute), 500),               // Aug 1 23:59
		intakeAt(day, 800),                                 // Aug 2 00:00
		intakeAt(day.Add(24*time.Hour-time.Minute), 200),   // Aug 2 23:59
		intakeAt(day.Add(24*time.Hour+time.Minute), 10000), // Aug 3 00:01
	}
	impact, _, ok := computeDayImpact("2026-08-02", events, 2400, fullPastDay,
		localDay(2026, 8, 1, 0), localDay(2026, 8, 5, 0))
	if !ok {
		t.Fatal("expected ok=true, got ok=false")
	}
	want := (800.0 + 200 - 2400) / 7700
	if math.Abs(impact-want) > 1e-12 {
		t.Errorf("impact = %v, want %v", impact, want)
	}
}

// TestComputeDailyImpact verifies the standalone entry point used by the
// live daily view: past dates burn a full day, today burns midnight-to-now.
func TestComputeDailyImpact(t *testing.T) {
	p := weightProfile{BaselineBMRKcal: 2400, CalibrationFactor: 1.0}
	now := localDay(2026, 8, 5, 6) // 06:00 → 600 kcal burned so far today

	pastEvents := []energyEvent{intakeAt(localDay(2026, 8, 2, 12), 1600)}
	impact, burned, ok := computeDailyImpact("2026-08-02", pastEvents, p, now)
	if !ok {
		t.Fatal("expected ok=true for past day")
	}
	if burned != 2400 {
		t.Errorf("past-day burn = %v, want 2400", burned)
	}
	if want := (1600.0 - 2400) / 7700; math.Abs(impact-want) > 1e-12 {
		t.Errorf("past-day impact = %v, want %v", impact, want)
	}

	todayEvents := []energyEvent{intakeAt(localDay(2026, 8, 5, 5), 700)}
	impact, burned, ok = computeDailyImpact("2026-08-05", todayEvents, p, now)
	if !ok {
		t.Fatal("expected ok=true for today")
	}
	if burned != 600 {
		t.Errorf("today burn = %v, want 600", burned)
	}
	if want := (700.0 - 600) / 7700; math.Abs(impact-want) > 1e-12 {
		t.Errorf("today impact = %v, want %v", impact, want)
	}

	if _, _, ok := computeDailyImpact("2026-08-03", pastEvents, p, now); ok {
		t.Error("expected ok=false for an unobserved day")
	}
}
