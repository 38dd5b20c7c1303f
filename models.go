package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// weightProfile maps to weight_profiles. One row per user with the body
// metrics driving the BMR formula plus the calibration state the engine
// learns over time. Timestamps are epoch milliseconds so day-gap arithmetic
// never round-trips through a timezone-dependent DB type.
type weightProfile struct {
	UserID   int     `json:"user_id"   db:"user_id"`
	Sex      string  `json:"sex"       db:"sex"`
	AgeYears int     `json:"age_years" db:"age_years"`
	HeightCM float64 `json:"height_cm" db:"height_cm"`
	WeightKG float64 `json:"weight_kg" db:"weight_kg"`

	// Calibration state. CalibrationBaseWeightKG is the weight the next
	// accepted weigh-in is compared against — distinct from WeightKG, which
	// same-day re-weighs may move without resetting the comparison window.
	BaselineBMRKcal         float64 `json:"baseline_bmr_kcal"          db:"baseline_bmr_kcal"`
	CalibrationFactor       float64 `json:"calibration_factor"         db:"calibration_factor"`
	CalibrationBaseWeightKG float64 `json:"calibration_base_weight_kg" db:"calibration_base_weight_kg"`
	LastWeightUpdateMS      int64   `json:"last_weight_update_ms"      db:"last_weight_update_ms"`
	CreatedAtMS             int64   `json:"created_at_ms"              db:"created_at_ms"`

	// Computed field — populated server-side from the row; not stored.
	// db:"-" tells RowToStructByName to skip it during scanning.
	EffectiveBMRKcal *int `json:"effective_bmr_kcal,omitempty" db:"-"`
}

// energyEvent maps to energy_events. Either an intake (food) or an
// expenditure (exercise) event; Kcal is always a positive magnitude and the
// Type field is the source of truth for direction.
type energyEvent struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	Type        string     `json:"type" db:"type"`
	ItemName    *string    `json:"item_name" db:"item_name"`
	Kcal        float64    `json:"kcal" db:"kcal"`
	TimestampMS int64      `json:"timestamp_ms" db:"timestamp_ms"`
	CreatedAt   *time.Time `json:"created_at" db:"created_at"`
}

// impactRecord maps to impact_log: the finalized mass-equivalent net energy
// balance for one completed calendar day. Rows are written lazily by
// backfill and adjusted in place (never replaced) by calibration corrections.
type impactRecord struct {
	Date     DateOnly `json:"date" db:"date"`
	ImpactKG float64  `json:"impact_kg" db:"impact_kg"`
}

// impactCorrection is one day's retroactive adjustment produced by a
// calibration pass. The caller applies it as impact_kg -= correction.
type impactCorrection struct {
	Date               string  `json:"date"`
	CorrectionPerDayKG float64 `json:"correction_per_day_kg"`
}

// Calibration outcome statuses. A weigh-in always updates the displayed
// weight; only statusCalibrated means the factor and the history moved.
const (
	statusCalibrated   = "calibrated"
	statusSameDay      = "same_day"
	statusFirstWeighIn = "first_weigh_in"
)

// calibrationResult is the ephemeral output of a weigh-in. The caller is
// responsible for persisting the profile and applying the corrections.
type calibrationResult struct {
	UpdatedProfile weightProfile      `json:"updated_profile"`
	Corrections    []impactCorrection `json:"corrections"`
	Status         string             `json:"status"`
}

// dailyImpactSummary is the response shape for GET /api/energy-log/daily.
// ImpactKG is nil for an unobserved day (no events logged).
type dailyImpactSummary struct {
	Date             string        `json:"date"`
	KcalIn           float64       `json:"kcal_in"`
	KcalOut          float64       `json:"kcal_out"`
	BMRBurnedKcal    float64       `json:"bmr_burned_kcal"`
	EffectiveBMRKcal float64       `json:"effective_bmr_kcal"`
	ImpactKG         *float64      `json:"impact_kg"`
	Items            []energyEvent `json:"items"`
	HasData          bool          `json:"has_data"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// createEnergyEventRequest is the request body for POST /api/energy-log/items.
type createEnergyEventRequest struct {
	Type        string  `json:"type"`
	ItemName    *string `json:"item_name"`
	Kcal        float64 `json:"kcal"`
	TimestampMS int64   `json:"timestamp_ms"`
}

// weighInRequest is the request body for POST /api/weigh-ins.
type weighInRequest struct {
	WeightKG float64 `json:"weight_kg"`
}

// patchProfileRequest is the request body for PATCH /api/profile.
// All fields are pointers — only non-nil fields get written to the database.
type patchProfileRequest struct {
	Sex      *string  `json:"sex"`
	AgeYears *int     `json:"age_years"`
	HeightCM *float64 `json:"height_cm"`
	WeightKG *float64 `json:"weight_kg"`
}
