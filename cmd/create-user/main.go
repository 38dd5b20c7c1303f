// CLI tool to create a user with bcrypt-hashed password and a starter
// weight-coach profile. The profile's baseline BMR is computed from the
// entered body metrics; the calibration factor starts at 1.0 and
// last_weight_update_ms at 0 so the first weigh-in records the baseline.
// Usage: go run ./cmd/create-user (from the repo root)
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func prompt(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func promptFloat(reader *bufio.Reader, label string) float64 {
	v, err := strconv.ParseFloat(prompt(reader, label), 64)
	if err != nil || v <= 0 {
		fmt.Fprintf(os.Stderr, "%s must be a positive number\n", label)
		os.Exit(1)
	}
	return v
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username")
	email := prompt(reader, "Email")
	password := prompt(reader, "Password")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required")
		os.Exit(1)
	}

	sex := prompt(reader, "Sex (male/female)")
	if sex != "male" && sex != "female" {
		fmt.Fprintln(os.Stderr, "Sex must be male or female")
		os.Exit(1)
	}
	age, err := strconv.Atoi(prompt(reader, "Age (years)"))
	if err != nil || age <= 0 || age > 130 {
		fmt.Fprintln(os.Stderr, "Age must be between 1 and 130")
		os.Exit(1)
	}
	heightCM := promptFloat(reader, "Height (cm)")
	weightKG := promptFloat(reader, "Weight (kg)")

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	authToken := uuid.New().String()

	// Mifflin-St Jeor, same formula the API recomputes on profile edits.
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}

	var userID int
	err = tx.QueryRow(ctx,
		"INSERT INTO users (username, email, auth_token, password) VALUES ($1, $2, $3, $4) RETURNING id",
		username, email, authToken, string(hashed)).Scan(&userID)
	if err != nil {
		tx.Rollback(ctx)
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO weight_profiles
			(user_id, sex, age_years, height_cm, weight_kg, baseline_bmr_kcal,
			 calibration_factor, calibration_base_weight_kg, last_weight_update_ms, created_at_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, 1.0, $5, 0, $7)`,
		userID, sex, age, heightCM, weightKG, bmr, time.Now().UnixMilli())
	if err != nil {
		tx.Rollback(ctx)
		fmt.Fprintf(os.Stderr, "Error creating profile: %v\n", err)
		os.Exit(1)
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser %d created.\nAuth token: %s\n", userID, authToken)
}
