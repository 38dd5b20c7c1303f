package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// sinkHash is a throwaway bcrypt hash compared against when a login names an
// unknown user. The comparison still runs so a failed lookup costs the same
// wall time as a wrong password, which keeps usernames unenumerable.
var sinkHash, _ = bcrypt.GenerateFromPassword([]byte("sink"), bcrypt.DefaultCost)

// login checks a username/password pair and hands back the token the client
// must present on every weight-coach API call, plus the user id the client
// needs for display. POST /api/login (public — no auth required).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		apiError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	u, lookupErr := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": body.Username})

	// Pick the hash to check before branching on the lookup result, so the
	// bcrypt work happens whether or not the username exists.
	hash := string(sinkHash)
	if lookupErr == nil {
		hash = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// authMiddleware resolves the Bearer token to a user row and sets user_id on
// the context for the handlers downstream. Uses the same queryOne helper as
// the rest of the repo so token-lookup failures get logged consistently.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		u, err := queryOne[user](h.db, c,
			"SELECT * FROM users WHERE auth_token = @token",
			pgx.NamedArgs{"token": token})
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", u.ID)
		c.Next()
	}
}
