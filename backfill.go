package main

import (
	"sort"
	"time"
)

// maxImpactRecords is the retention cap on the impact history: after a
// merge, only the most recent entries up to this count are kept. Indefinite
// history retention is a non-goal; a year is enough for every consumer of
// the log.
const maxImpactRecords = 365

// backfillMissingDays materializes impact records for every fully elapsed
// calendar day with logged activity that the store doesn't have yet.
//
// The walk starts at the later of the earliest event date and the profile
// creation date, and ends at yesterday — today is never finalized. Days
// already present in existing are skipped, so re-running backfill is
// idempotent. Unobserved days produce no record at all.
func backfillMissingDays(p weightProfile, events []energyEvent, existing []impactRecord, now time.Time) ([]impactRecord, error) {
	if len(events) == 0 {
		return nil, nil
	}

	earliest := events[0].TimestampMS
	for _, ev := range events {
		if ev.TimestampMS < 0 {
			return nil, errInvalidTimestamp
		}
		if ev.TimestampMS < earliest {
			earliest = ev.TimestampMS
		}
	}

	start := startOfDay(time.UnixMilli(earliest))
	if created := startOfDay(time.UnixMilli(p.CreatedAtMS)); created.After(start) {
		start = created
	}

	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[dayKey(r.Date.Time)] = true
	}

	effBMR := effectiveBMR(p)
	today := startOfDay(now)
	var added []impactRecord
	for d := start; d.Before(today); d = d.AddDate(0, 0, 1) {
		key := dayKey(d)
		if have[key] {
			continue
		}
		impact, _, ok := computeDayImpact(key, events, effBMR, fullPastDay, d, now)
		if !ok {
			continue
		}
		added = append(added, impactRecord{Date: DateOnly{d}, ImpactKG: impact})
	}
	return added, nil
}

// mergeImpactRecords combines existing and newly backfilled records, sorts
// them by date ascending, and drops the oldest entries beyond the retention
// cap. Callers persist the returned slice wholesale.
func mergeImpactRecords(existing, added []impactRecord) []impactRecord {
	merged := make([]impactRecord, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.Time.Before(merged[j].Date.Time)
	})
	if len(merged) > maxImpactRecords {
		merged = merged[len(merged)-maxImpactRecords:]
	}
	return merged
}
