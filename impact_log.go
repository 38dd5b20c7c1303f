package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getImpactLog returns finalized daily impact records within [start, end].
// GET /api/impact-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no records exist in the range.
func (h *Handler) getImpactLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse(dateFormat, start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(dateFormat, end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	records, err := queryMany[impactRecord](h.db, c,
		`SELECT date, impact_kg FROM impact_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch impact log")
		return
	}
	// Ensure empty array (not null) in JSON
	if records == nil {
		records = []impactRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// loadCalibrationInputs fetches the profile, full event history, and stored
// impact records the engine needs. Events come back ordered by timestamp.
func (h *Handler) loadCalibrationInputs(c *gin.Context, userID int) (weightProfile, []energyEvent, []impactRecord, error) {
	p, err := queryOne[weightProfile](h.db, c,
		"SELECT * FROM weight_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return weightProfile{}, nil, nil, err
	}
	events, err := queryMany[energyEvent](h.db, c,
		"SELECT * FROM energy_events WHERE user_id = @userID ORDER BY timestamp_ms",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return weightProfile{}, nil, nil, err
	}
	records, err := queryMany[impactRecord](h.db, c,
		"SELECT date, impact_kg FROM impact_log WHERE user_id = @userID ORDER BY date",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return weightProfile{}, nil, nil, err
	}
	return p, events, records, nil
}

// runBackfill materializes impact records for any fully elapsed day with
// logged activity that the store is missing, then rewrites the store as the
// merged, retention-capped history. POST /api/impact-log/backfill.
// Idempotent: a second call right after the first adds nothing.
func (h *Handler) runBackfill(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := time.Now()

	p, events, records, err := h.loadCalibrationInputs(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load history")
		return
	}

	added, err := backfillMissingDays(p, events, records, now)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(added) == 0 {
		c.JSON(http.StatusOK, gin.H{"added": 0, "total": len(records)})
		return
	}

	merged := mergeImpactRecords(records, added)

	// Replace the user's history wholesale inside one transaction so a
	// mid-write failure never leaves a partially merged store.
	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update impact log")
		return
	}
	defer tx.Rollback(c)

	if _, err := tx.Exec(c, "DELETE FROM impact_log WHERE user_id = $1", userID); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update impact log")
		return
	}
	for _, r := range merged {
		if _, err := tx.Exec(c,
			"INSERT INTO impact_log (user_id, date, impact_kg) VALUES ($1, $2, $3)",
			userID, r.Date.Time, r.ImpactKG); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to update impact log")
			return
		}
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update impact log")
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": len(added), "total": len(merged)})
}

// submitWeighIn is the calibration entry point. POST /api/weigh-ins.
// Body: { "weight_kg": 81.4 }. Runs the engine against the stored event
// history, persists the updated profile, and applies any history
// corrections — profile update and corrections commit atomically so the
// store never reflects a calibration that was only half applied.
func (h *Handler) submitWeighIn(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := time.Now()

	var body weighInRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WeightKG <= 0 || body.WeightKG > 700 {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	p, events, _, err := h.loadCalibrationInputs(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load history")
		return
	}

	result, err := calibrateOnNewWeight(p, events, body.WeightKG, now)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save weigh-in")
		return
	}
	defer tx.Rollback(c)

	up := result.UpdatedProfile
	if _, err := tx.Exec(c,
		`UPDATE weight_profiles SET
			weight_kg                  = $1,
			baseline_bmr_kcal          = $2,
			calibration_factor         = $3,
			calibration_base_weight_kg = $4,
			last_weight_update_ms      = $5
		 WHERE user_id = $6`,
		up.WeightKG, up.BaselineBMRKcal, up.CalibrationFactor,
		up.CalibrationBaseWeightKG, up.LastWeightUpdateMS, userID); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save weigh-in")
		return
	}

	for _, corr := range result.Corrections {
		if _, err := tx.Exec(c,
			"UPDATE impact_log SET impact_kg = impact_kg - $1 WHERE user_id = $2 AND date = $3",
			corr.CorrectionPerDayKG, userID, corr.Date); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to save weigh-in")
			return
		}
	}

	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save weigh-in")
		return
	}

	if result.Status == statusCalibrated {
		log.Printf("[weigh-in] user %d calibrated: factor %.4f -> %.4f, %d corrections",
			userID, p.CalibrationFactor, up.CalibrationFactor, len(result.Corrections))
	}

	populateComputedBMR(&result.UpdatedProfile)

	c.JSON(http.StatusOK, result)
}
