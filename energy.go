package main

import "errors"

// kcalPerKG is the energy density used to convert net calorie balances to
// body-mass changes (body-fat heuristic, ~7700 kcal per kg).
const kcalPerKG = 7700.0

// Bounds for the learned calibration factor. The multiplier is clamped here
// no matter how large the implied metabolic shift is, so one wild weigh-in
// can never push the model into implausible territory.
const (
	minCalibrationFactor = 0.5
	maxCalibrationFactor = 1.5
)

// validSexes is the set of values the Mifflin-St Jeor offset is defined for.
// Also used for input validation in patchProfile.
var validSexes = map[string]bool{
	"male":   true,
	"female": true,
}

// Engine validation errors. Handlers map these to 400s; everything else a
// handler sees from the engine is a programming error.
var (
	errInvalidMeasurement = errors.New("weight, height, and age must be positive")
	errInvalidTimestamp   = errors.New("event timestamp is negative or malformed")
)

// baselineBMR computes the resting metabolic rate via Mifflin-St Jeor:
// 10*weight + 6.25*height - 5*age, then +5 for male or -161 for female.
// Pure and total — callers must pre-validate that the inputs are positive.
func baselineBMR(weightKG, heightCM float64, ageYears int, sex string) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(ageYears)
	if sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr
}

// kcalToKG converts an energy delta to its equivalent body-mass delta.
func kcalToKG(kcal float64) float64 {
	return kcal / kcalPerKG
}

// kgToKcal is the inverse of kcalToKG.
func kgToKcal(kg float64) float64 {
	return kg * kcalPerKG
}

// effectiveBMR is the model's current best estimate of true resting burn:
// the formula-derived baseline scaled by the learned calibration factor.
func effectiveBMR(p weightProfile) float64 {
	return p.BaselineBMRKcal * p.CalibrationFactor
}

// clampFactor bounds a candidate calibration factor to the allowed range.
func clampFactor(f float64) float64 {
	if f < minCalibrationFactor {
		return minCalibrationFactor
	}
	if f > maxCalibrationFactor {
		return maxCalibrationFactor
	}
	return f
}

// validateBodyMetrics rejects profiles the BMR formula would produce
// nonsense for. Called before any calibration state is mutated so a bad
// request never half-applies a profile update.
func validateBodyMetrics(weightKG, heightCM float64, ageYears int) error {
	if weightKG <= 0 || heightCM <= 0 || ageYears <= 0 {
		return errInvalidMeasurement
	}
	return nil
}
