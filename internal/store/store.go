// Package store persists users, citizen fire reports, and dispatched
// alerts in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

// User is a registered account. PasswordHash never leaves this package's
// callers except for credential checks.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Report is a citizen-submitted fire sighting.
type Report struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Latitude    float64   `json:"latitud"`
	Longitude   float64   `json:"longitud"`
	Description string    `json:"descripcion"`
	Status      string    `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
}

// Alert is a notification dispatched for a detection or report.
type Alert struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Latitude  float64   `json:"latitud"`
	Longitude float64   `json:"longitud"`
	Message   string    `json:"mensaje"`
	CreatedAt time.Time `json:"created_at"`
}

// Report status values.
const (
	ReportStatusPending   = "pendiente"
	ReportStatusVerified  = "verificado"
	ReportStatusDismissed = "descartado"
)

// Store wraps the SQL connection pool.
type Store struct {
	db *sql.DB
}

// New opens the pool and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing pool, for tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new account and returns it with its generated ID.
func (s *Store) CreateUser(ctx context.Context, email, displayName, passwordHash string) (*User, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    domain.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail looks up one account. A missing account is domain.ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at
		 FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// CreateReport records a citizen fire sighting, initially pending review.
func (s *Store) CreateReport(ctx context.Context, userID string, lat, lon float64, description string) (*Report, error) {
	report := Report{
		ID:          uuid.NewString(),
		UserID:      userID,
		Latitude:    lat,
		Longitude:   lon,
		Description: description,
		Status:      ReportStatusPending,
		CreatedAt:   domain.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, user_id, latitude, longitude, description, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.UserID, report.Latitude, report.Longitude,
		report.Description, report.Status, report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return &report, nil
}

// ListReports returns the most recent sightings, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, latitude, longitude, description, status, created_at
		 FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.UserID, &r.Latitude, &r.Longitude,
			&r.Description, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// UpdateReportStatus moves a sighting through review. An unknown ID is
// domain.ErrNotFound.
func (s *Store) UpdateReportStatus(ctx context.Context, reportID, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = $1 WHERE id = $2`, status, reportID)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("report %s: %w", reportID, domain.ErrNotFound)
	}
	return nil
}

// CreateAlert records a dispatched alert.
func (s *Store) CreateAlert(ctx context.Context, kind string, lat, lon float64, message string) (*Alert, error) {
	alert := Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		Latitude:  lat,
		Longitude: lon,
		Message:   message,
		CreatedAt: domain.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, kind, latitude, longitude, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		alert.ID, alert.Kind, alert.Latitude, alert.Longitude, alert.Message, alert.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	return &alert, nil
}

// ListAlerts returns the most recent alerts, newest first.
func (s *Store) ListAlerts(ctx context.Context, limit int) ([]Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, latitude, longitude, message, created_at
		 FROM alerts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.Kind, &a.Latitude, &a.Longitude, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return alerts, nil
}
