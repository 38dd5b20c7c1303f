package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupValidationRouter creates a Gin engine with the real routes but a stub
// auth layer that injects user_id=1. No DB: every request below must be
// rejected by handler validation before any query runs.
func setupValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handler{}
	router := gin.New()
	api := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	})
	api.PATCH("/profile", h.patchProfile)
	api.GET("/energy-log/daily", h.getDailyImpactSummary)
	api.POST("/energy-log/items", h.createEnergyEvent)
	api.GET("/impact-log", h.getImpactLog)
	api.POST("/weigh-ins", h.submitWeighIn)
	return router
}

// doJSON sends a request with a JSON body and returns the recorder.
func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHandlers_RejectBadInput verifies each endpoint's validation guard
// returns 400 before touching the database.
func TestHandlers_RejectBadInput(t *testing.T) {
	router := setupValidationRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"weigh-in: malformed body", "POST", "/api/weigh-ins", `{"weight_kg": "x"}`},
		{"weigh-in: zero weight", "POST", "/api/weigh-ins", `{"weight_kg": 0}`},
		{"weigh-in: absurd weight", "POST", "/api/weigh-ins", `{"weight_kg": 1200}`},
		{"event: unknown type", "POST", "/api/energy-log/items", `{"type":"steps","kcal":100}`},
		{"event: zero kcal", "POST", "/api/energy-log/items", `{"type":"intake","kcal":0}`},
		{"event: negative timestamp", "POST", "/api/energy-log/items", `{"type":"intake","kcal":100,"timestamp_ms":-5}`},
		{"daily: invalid date", "GET", "/api/energy-log/daily?date=08/01/2026", ""},
		{"impact log: missing params", "GET", "/api/impact-log", ""},
		{"impact log: invalid start", "GET", "/api/impact-log?start=nope&end=2026-08-05", ""},
		{"impact log: start after end", "GET", "/api/impact-log?start=2026-08-09&end=2026-08-05", ""},
		{"profile: bad sex", "PATCH", "/api/profile", `{"sex":"other"}`},
		{"profile: zero height", "PATCH", "/api/profile", `{"height_cm":0}`},
		{"profile: implausible age", "PATCH", "/api/profile", `{"age_years":200}`},
		{"profile: nothing to update", "PATCH", "/api/profile", `{}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, tc.method, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

// TestAuthMiddleware_RejectsBadHeaders verifies malformed Authorization
// headers are rejected before the token lookup ever runs.
func TestAuthMiddleware_RejectsBadHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handler{}
	router := gin.New()
	router.GET("/api/profile", h.authMiddleware(), h.getProfile)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwdw=="},
		{"bare Bearer with no token", "Bearer "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

// TestLogin_RejectsIncompleteCredentials verifies the login handler rejects
// malformed or empty credentials with 400 before any user lookup.
func TestLogin_RejectsIncompleteCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handler{}
	router := gin.New()
	router.POST("/api/login", h.login)

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"username": 7}`},
		{"missing password", `{"username":"lyle"}`},
		{"missing username", `{"password":"hunter2"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/login", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
