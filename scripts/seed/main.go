// Command seed prepares a database for local development: it creates the
// schema, an admin account and optionally a demo hall with a roster of
// students loaded from a JSON file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name     TEXT NOT NULL,
    role          TEXT NOT NULL,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    last_login    TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token      TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked    BOOLEAN NOT NULL DEFAULT FALSE,
    revoked_at TIMESTAMPTZ,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS students (
    id          TEXT PRIMARY KEY,
    full_name   TEXT NOT NULL,
    email       TEXT NOT NULL UNIQUE,
    roll_number TEXT NOT NULL UNIQUE,
    photo_data  TEXT,
    photo_mime  TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS halls (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    row_count     INTEGER NOT NULL,
    seats_per_row INTEGER NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS seat_assignments (
    id          TEXT PRIMARY KEY,
    hall_id     TEXT NOT NULL REFERENCES halls(id) ON DELETE CASCADE,
    student_id  TEXT REFERENCES students(id) ON DELETE CASCADE,
    seat_row    INTEGER NOT NULL,
    seat_no     INTEGER NOT NULL,
    assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (hall_id, seat_row, seat_no),
    UNIQUE (hall_id, student_id)
);

CREATE TABLE IF NOT EXISTS export_jobs (
    id            TEXT PRIMARY KEY,
    params        JSONB NOT NULL,
    status        TEXT NOT NULL,
    progress      INTEGER NOT NULL DEFAULT 0,
    result_url    TEXT,
    created_by    TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at   TIMESTAMPTZ,
    error_message TEXT
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id          TEXT PRIMARY KEY,
    user_id     TEXT REFERENCES users(id),
    action      TEXT NOT NULL,
    resource    TEXT NOT NULL,
    resource_id TEXT,
    new_values  JSONB,
    ip_address  TEXT NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type rosterEntry struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
}

func main() {
	var (
		adminEmail    string
		adminPassword string
		rosterPath    string
		hallName      string
		hallRows      int
		hallSeats     int
		skipSchema    bool
	)

	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "Admin account email")
	flag.StringVar(&adminPassword, "admin-password", "", "Admin account password (required)")
	flag.StringVar(&rosterPath, "roster", "", "Path to a JSON roster file (optional)")
	flag.StringVar(&hallName, "hall", "", "Name of a demo hall to create (optional)")
	flag.IntVar(&hallRows, "rows", 5, "Demo hall row count")
	flag.IntVar(&hallSeats, "seats-per-row", 6, "Demo hall seats per row")
	flag.BoolVar(&skipSchema, "skip-schema", false, "Do not create tables")
	flag.Parse()

	if adminPassword == "" {
		log.Fatal("-admin-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close() //nolint:errcheck

	if !skipSchema {
		if _, err := db.Exec(schema); err != nil {
			log.Fatalf("failed to create schema: %v", err)
		}
		fmt.Println("schema ready")
	}

	if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("admin account ready: %s\n", adminEmail)

	if rosterPath != "" {
		n, err := seedRoster(db, rosterPath)
		if err != nil {
			log.Fatalf("failed to seed roster: %v", err)
		}
		fmt.Printf("roster loaded: %d students\n", n)
	}

	if hallName != "" {
		if err := seedHall(db, hallName, hallRows, hallSeats); err != nil {
			log.Fatalf("failed to seed hall: %v", err)
		}
		fmt.Printf("hall ready: %s (%dx%d)\n", hallName, hallRows, hallSeats)
	}
}

func seedAdmin(db *sqlx.DB, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at`,
		uuid.NewString(), email, string(hash), "Administrator", string(models.RoleAdmin), now)
	return err
}

func seedRoster(db *sqlx.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var entries []rosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no students defined in %s", path)
	}

	now := time.Now().UTC()
	for _, e := range entries {
		if e.FullName == "" || e.Email == "" || e.RollNumber == "" {
			return 0, fmt.Errorf("roster entry missing full_name, email or roll_number: %+v", e)
		}
		_, err := db.Exec(`
			INSERT INTO students (id, full_name, email, roll_number, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (roll_number) DO NOTHING`,
			uuid.NewString(), e.FullName, e.Email, e.RollNumber, now)
		if err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

func seedHall(db *sqlx.DB, name string, rows, seatsPerRow int) error {
	if rows < 1 || seatsPerRow < 1 {
		return fmt.Errorf("hall dimensions must be positive, got %dx%d", rows, seatsPerRow)
	}
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO halls (id, name, row_count, seats_per_row, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		uuid.NewString(), name, rows, seatsPerRow, now)
	return err
}
