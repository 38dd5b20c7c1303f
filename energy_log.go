package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validEventTypes is the set of allowed values for the energy_event_type enum.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validEventTypes = map[string]bool{
	"intake":      true,
	"expenditure": true,
}

// farFutureSlackMS is how far past "now" an event timestamp may sit before
// it is rejected as malformed. One day covers client clock skew.
const farFutureSlackMS = 24 * 60 * 60 * 1000

// getDailyImpactSummary returns the logged events and the live computed
// impact for a given date. GET /api/energy-log/daily?date=YYYY-MM-DD
// (defaults to today). For today, the BMR burn covers midnight to now; for
// past dates it covers the whole day.
func (h *Handler) getDailyImpactSummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	now := time.Now()
	date := c.DefaultQuery("date", dayKey(now))

	// Validate date format before querying — an invalid value silently returns no rows.
	parsed, err := time.ParseInLocation(dateFormat, date, time.Local)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	dayStart := parsed.UnixMilli()
	dayEnd := parsed.AddDate(0, 0, 1).UnixMilli()
	items, err := queryMany[energyEvent](h.db, c,
		`SELECT * FROM energy_events
		 WHERE user_id = @userID AND timestamp_ms >= @dayStart AND timestamp_ms < @dayEnd
		 ORDER BY timestamp_ms`,
		pgx.NamedArgs{"userID": userID, "dayStart": dayStart, "dayEnd": dayEnd})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch events")
		return
	}
	// Ensure items is an empty array (not null) in JSON
	if items == nil {
		items = []energyEvent{}
	}

	p, err := queryOne[weightProfile](h.db, c,
		"SELECT * FROM weight_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	summary := dailyImpactSummary{
		Date:             date,
		Items:            items,
		EffectiveBMRKcal: effectiveBMR(p),
	}
	for _, item := range items {
		if item.Type == "expenditure" {
			summary.KcalOut += item.Kcal
		} else {
			summary.KcalIn += item.Kcal
		}
	}

	if impact, burned, ok := computeDailyImpact(date, items, p, now); ok {
		summary.ImpactKG = &impact
		summary.BMRBurnedKcal = burned
		summary.HasData = true
	}

	c.JSON(http.StatusOK, summary)
}

// createEnergyEvent records a new intake or expenditure event.
// POST /api/energy-log/items.
func (h *Handler) createEnergyEvent(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createEnergyEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validEventTypes[body.Type] {
		apiError(c, http.StatusBadRequest, "type must be one of: intake, expenditure")
		return
	}
	if body.Kcal <= 0 || body.Kcal > 20000 {
		apiError(c, http.StatusBadRequest, "kcal must be between 0 and 20000")
		return
	}
	now := time.Now()
	if body.TimestampMS == 0 {
		body.TimestampMS = now.UnixMilli()
	}
	if body.TimestampMS < 0 || body.TimestampMS > now.UnixMilli()+farFutureSlackMS {
		apiError(c, http.StatusBadRequest, "timestamp_ms is negative or in the far future")
		return
	}

	// Events from before the profile existed can't be attributed to any
	// trajectory the engine will ever evaluate.
	p, err := queryOne[weightProfile](h.db, c,
		"SELECT * FROM weight_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	if body.TimestampMS < startOfDay(time.UnixMilli(p.CreatedAtMS)).UnixMilli() {
		apiError(c, http.StatusBadRequest, "timestamp_ms predates the profile")
		return
	}

	event, err := queryOne[energyEvent](h.db, c,
		`INSERT INTO energy_events (user_id, type, item_name, kcal, timestamp_ms)
		 VALUES (@userID, @type, @itemName, @kcal, @timestampMS)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "type": body.Type, "itemName": body.ItemName,
			"kcal": body.Kcal, "timestampMS": body.TimestampMS,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// updateEnergyEvent partially updates an existing event.
// PUT /api/energy-log/items/:id. Body: { "item_name"?, "kcal"?, "timestamp_ms"? }.
// Uses COALESCE so omitted fields keep their current values. The caller is
// expected to re-run backfill for the affected day afterwards.
func (h *Handler) updateEnergyEvent(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		ItemName    *string  `json:"item_name"`
		Kcal        *float64 `json:"kcal"`
		TimestampMS *int64   `json:"timestamp_ms"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Kcal != nil && (*body.Kcal <= 0 || *body.Kcal > 20000) {
		apiError(c, http.StatusBadRequest, "kcal must be between 0 and 20000")
		return
	}
	if body.TimestampMS != nil && *body.TimestampMS < 0 {
		apiError(c, http.StatusBadRequest, "timestamp_ms must not be negative")
		return
	}

	event, err := queryOne[energyEvent](h.db, c,
		`UPDATE energy_events SET
			item_name    = COALESCE(@itemName, item_name),
			kcal         = COALESCE(@kcal, kcal),
			timestamp_ms = COALESCE(@timestampMS, timestamp_ms)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "itemName": body.ItemName,
			"kcal": body.Kcal, "timestampMS": body.TimestampMS,
		})
	if err != nil {
		// Distinguish a missing row from a real DB failure so callers get an
		// actionable status code rather than a misleading 404.
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "event not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update event")
		}
		return
	}

	c.JSON(http.StatusOK, event)
}

// deleteEnergyEvent removes an energy event by ID.
// DELETE /api/energy-log/items/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteEnergyEvent(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM energy_events WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete event")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "event not found")
		return
	}

	c.Status(http.StatusNoContent)
}
