package main

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// populateComputedBMR fills the computed-only effective-BMR field on p.
func populateComputedBMR(p *weightProfile) {
	eff := int(math.Round(effectiveBMR(*p)))
	p.EffectiveBMRKcal = &eff
}

// getProfile returns the weight-coach profile for the authenticated user.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[weightProfile](h.db, c,
		"SELECT * FROM weight_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	populateComputedBMR(&p)

	c.JSON(http.StatusOK, p)
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Uses pointer fields in the request body to distinguish
// "not provided" from zero — only non-nil fields get updated. Body-metric
// edits re-derive baseline_bmr_kcal so the stored baseline never goes stale;
// weight edits here do NOT touch the calibration state (that is the
// weigh-in endpoint's job).
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate before saving — a bad sex value silently breaks every future
	// BMR computation with no visible error.
	if body.Sex != nil && !validSexes[*body.Sex] {
		apiError(c, http.StatusBadRequest, "sex must be one of: male, female")
		return
	}
	if body.AgeYears != nil && (*body.AgeYears <= 0 || *body.AgeYears > 130) {
		apiError(c, http.StatusBadRequest, "age_years must be between 1 and 130")
		return
	}
	if body.HeightCM != nil && (*body.HeightCM <= 0 || *body.HeightCM > 300) {
		apiError(c, http.StatusBadRequest, "height_cm must be between 0 and 300")
		return
	}
	if body.WeightKG != nil && (*body.WeightKG <= 0 || *body.WeightKG > 700) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 700")
		return
	}

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	if body.Sex != nil {
		setClauses = append(setClauses, "sex = @sex")
		args["sex"] = *body.Sex
	}
	if body.AgeYears != nil {
		setClauses = append(setClauses, "age_years = @ageYears")
		args["ageYears"] = *body.AgeYears
	}
	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE weight_profiles SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	p, err := queryOne[weightProfile](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	// Re-derive the baseline from whatever the row now holds and persist it.
	bmr := baselineBMR(p.WeightKG, p.HeightCM, p.AgeYears, p.Sex)
	if bmr != p.BaselineBMRKcal {
		updated, err := queryOne[weightProfile](h.db, c,
			"UPDATE weight_profiles SET baseline_bmr_kcal = @bmr WHERE user_id = @userID RETURNING *",
			pgx.NamedArgs{"bmr": bmr, "userID": userID})
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to update profile")
			return
		}
		p = updated
	}

	populateComputedBMR(&p)

	c.JSON(http.StatusOK, p)
}
