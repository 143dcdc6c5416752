// Package storage persists outreach history in SQLite. The service
// layer uses it to enforce daily limits and to keep an audit trail of
// every attempted action.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// OutcomeRecord captures the result of a connection attempt against a
// profile.
type OutcomeRecord struct {
	ID          int64
	ActionID    string
	ProspectID  string
	ProfileURL  string
	ActionTaken string
	Success     bool
	MessageSent bool
	Detail      string
	AttemptedAt time.Time
}

// EngagementRecord captures a visit, reaction, comment or message.
type EngagementRecord struct {
	ID         int64
	ProfileURL string
	Kind       string
	Payload    string
	Success    bool
	OccurredAt time.Time
}

// Store wraps the SQLite handle. Safe for concurrent use through
// database/sql's pooling.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action_id TEXT NOT NULL,
		prospect_id TEXT NOT NULL,
		profile_url TEXT NOT NULL,
		action_taken TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		message_sent BOOLEAN NOT NULL DEFAULT FALSE,
		detail TEXT,
		attempted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS engagements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_url TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload TEXT,
		success BOOLEAN NOT NULL,
		occurred_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action_type TEXT NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_profile ON outcomes(profile_url);
	CREATE INDEX IF NOT EXISTS idx_outcomes_attempted_at ON outcomes(attempted_at);
	CREATE INDEX IF NOT EXISTS idx_engagements_profile ON engagements(profile_url);
	CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(action_type);
	CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordOutcome stores the result of a connection attempt.
func (s *Store) RecordOutcome(rec OutcomeRecord) error {
	query := `
		INSERT INTO outcomes (action_id, prospect_id, profile_url, action_taken, success, message_sent, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, rec.ActionID, rec.ProspectID, rec.ProfileURL,
		rec.ActionTaken, rec.Success, rec.MessageSent, rec.Detail)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	return nil
}

// RecordEngagement stores a visit, reaction, comment or message.
func (s *Store) RecordEngagement(rec EngagementRecord) error {
	query := `
		INSERT INTO engagements (profile_url, kind, payload, success)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, rec.ProfileURL, rec.Kind, rec.Payload, rec.Success)
	if err != nil {
		return fmt.Errorf("failed to record engagement: %w", err)
	}

	return nil
}

// RecordAction logs an action of the given type for rate accounting.
func (s *Store) RecordAction(actionType string) error {
	query := `INSERT INTO actions (action_type) VALUES (?)`

	if _, err := s.db.Exec(query, actionType); err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}

	return nil
}

// ConnectionRequestsToday counts successful connection requests sent
// since midnight UTC.
func (s *Store) ConnectionRequestsToday() (int, error) {
	query := `
		SELECT COUNT(*) FROM outcomes
		WHERE action_taken = 'connection_request' AND success = TRUE
		  AND DATE(attempted_at) = DATE('now')
	`

	var count int
	if err := s.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get today's request count: %w", err)
	}

	return count, nil
}

// ActionsInLastHour counts actions of a type within the past hour.
func (s *Store) ActionsInLastHour(actionType string) (int, error) {
	query := `
		SELECT COUNT(*) FROM actions
		WHERE action_type = ? AND timestamp >= datetime('now', '-1 hour')
	`

	var count int
	if err := s.db.QueryRow(query, actionType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get action count: %w", err)
	}

	return count, nil
}

// AlreadyAttempted reports whether a successful connection request was
// already recorded for the profile.
func (s *Store) AlreadyAttempted(profileURL string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM outcomes
		WHERE profile_url = ? AND action_taken = 'connection_request' AND success = TRUE
	`

	var count int
	if err := s.db.QueryRow(query, profileURL).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check attempt history: %w", err)
	}

	return count > 0, nil
}

// CleanupOldActions removes rate-accounting rows older than 30 days.
func (s *Store) CleanupOldActions() error {
	query := `
		DELETE FROM actions
		WHERE timestamp < datetime('now', '-30 days')
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to cleanup old actions: %w", err)
	}

	return nil
}

// Stats returns aggregate counters for the health endpoint.
func (s *Store) Stats() (map[string]int, error) {
	stats := make(map[string]int)

	queries := map[string]string{
		"total_outcomes":      "SELECT COUNT(*) FROM outcomes",
		"successful_requests": "SELECT COUNT(*) FROM outcomes WHERE action_taken = 'connection_request' AND success = TRUE",
		"total_engagements":   "SELECT COUNT(*) FROM engagements",
	}

	for key, query := range queries {
		var count int
		if err := s.db.QueryRow(query).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", key, err)
		}
		stats[key] = count
	}

	return stats, nil
}
