package main

import (
	"math"
	"time"
)

// Calibration tuning constants.
const (
	// noiseGateRatio: implied metabolic shifts within this band are treated
	// as measurement noise and ignored rather than learned.
	noiseGateRatio = 0.05
	// trustPerDay/maxTrust: trust in a weigh-in grows linearly with the
	// length of the window it closes, capped at an even old/new split. A
	// 1-day reading can move the factor by at most 10%; 5+ days by 50%.
	trustPerDay = 0.1
	maxTrust    = 0.5
	// minCorrectionKG: prediction errors below this are not worth a
	// correction pass over the history.
	minCorrectionKG = 0.001
)

// calibrateOnNewWeight consumes a fresh weight measurement and decides
// whether enough time has passed for it to be signal rather than noise.
//
// Same-day weigh-ins (dayGap == 0) only refresh the displayed weight and
// baseline BMR; the comparison baseline and the last-update timestamp stay
// put so the elapsed window keeps accumulating toward the next attempt.
// Once at least a full day has passed, the engine reconstructs the
// predicted weight trajectory since the last accepted weigh-in, compares it
// with the observed change, learns a corrected calibration factor, and
// emits per-day corrections that reconcile the recorded history with
// reality.
//
// Pure: inputs are never mutated, now is read once by the caller and
// threaded through, and the caller persists the returned profile and
// applies the corrections.
func calibrateOnNewWeight(p weightProfile, events []energyEvent, newWeightKG float64, now time.Time) (calibrationResult, error) {
	if newWeightKG <= 0 {
		return calibrationResult{}, errInvalidMeasurement
	}
	if err := validateBodyMetrics(newWeightKG, p.HeightCM, p.AgeYears); err != nil {
		return calibrationResult{}, err
	}

	// First-ever weigh-in: there is no prior baseline to compare against,
	// so record one and defer calibration to the next weigh-in. Surfaced as
	// its own status instead of masquerading as a same-day rejection.
	if p.LastWeightUpdateMS == 0 {
		updated := p
		updated.WeightKG = newWeightKG
		updated.BaselineBMRKcal = baselineBMR(newWeightKG, p.HeightCM, p.AgeYears, p.Sex)
		updated.CalibrationBaseWeightKG = newWeightKG
		updated.LastWeightUpdateMS = now.UnixMilli()
		return calibrationResult{UpdatedProfile: updated, Status: statusFirstWeighIn}, nil
	}

	gapHours := float64(now.UnixMilli()-p.LastWeightUpdateMS) / (1000 * 60 * 60)
	dayGap := int(math.Floor(gapHours / 24))

	// REJECT: too fresh to distinguish from water weight or stomach
	// contents. Display weight moves, calibration state does not.
	if dayGap < 1 {
		updated := p
		updated.WeightKG = newWeightKG
		updated.BaselineBMRKcal = baselineBMR(newWeightKG, p.HeightCM, p.AgeYears, p.Sex)
		return calibrationResult{UpdatedProfile: updated, Status: statusSameDay}, nil
	}

	// ACCEPT: reconstruct the predicted trajectory over the window using
	// the same effective BMR the predictions were originally made with.
	// actualChange is measured against the calibration base weight, not the
	// display weight — same-day saves may have moved the latter.
	actualChangeKG := newWeightKG - p.CalibrationBaseWeightKG
	windowStart := time.UnixMilli(p.LastWeightUpdateMS)
	effBMR := effectiveBMR(p)

	var predictedChangeKG, totalBMRBurnedKcal float64
	var recordsInPeriod []impactCorrection
	today := startOfDay(now)
	for d := startOfDay(windowStart); !d.After(today); d = d.AddDate(0, 0, 1) {
		key := dayKey(d)
		policy := classifyDay(key, windowStart, now)
		impact, burned, ok := computeDayImpact(key, events, effBMR, policy, windowStart, now)
		if !ok {
			continue // unobserved day: net zero, not net deficit
		}
		predictedChangeKG += impact
		totalBMRBurnedKcal += burned
		recordsInPeriod = append(recordsInPeriod, impactCorrection{Date: key})
	}

	// Positive error: the model over-predicted gain, i.e. the real
	// metabolism burns more than modeled.
	predictionErrorKG := predictedChangeKG - actualChangeKG

	// Solve analytically for the burn multiplier r that would have made the
	// prediction match reality, then gate, clamp, and smooth it in.
	newFactor := p.CalibrationFactor
	if totalBMRBurnedKcal > 0 {
		r := 1 + kgToKcal(predictionErrorKG)/totalBMRBurnedKcal
		if math.Abs(r-1) > noiseGateRatio {
			candidate := clampFactor(p.CalibrationFactor * r)
			newRatio := math.Min(float64(dayGap)*trustPerDay, maxTrust)
			newFactor = (1-newRatio)*p.CalibrationFactor + newRatio*candidate
		}
	}

	updated := p
	updated.WeightKG = newWeightKG
	updated.BaselineBMRKcal = baselineBMR(newWeightKG, p.HeightCM, p.AgeYears, p.Sex)
	updated.CalibrationFactor = newFactor
	updated.CalibrationBaseWeightKG = newWeightKG
	updated.LastWeightUpdateMS = now.UnixMilli()

	// Distribute the error evenly across the window's observed days so the
	// corrected impacts sum to the actual change exactly.
	var corrections []impactCorrection
	if len(recordsInPeriod) > 0 && math.Abs(predictionErrorKG) > minCorrectionKG {
		perDay := predictionErrorKG / float64(len(recordsInPeriod))
		corrections = recordsInPeriod
		for i := range corrections {
			corrections[i].CorrectionPerDayKG = perDay
		}
	}

	return calibrationResult{
		UpdatedProfile: updated,
		Corrections:    corrections,
		Status:         statusCalibrated,
	}, nil
}
