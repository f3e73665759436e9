package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertAnalysis writes the analysis payload for a session: insert when no row
// exists, otherwise update in place and bump the timestamp. The native upsert
// makes repeated analysis runs converge to a single row with no read-then-write
// race and no uniqueness conflict.
func (s *Store) UpsertAnalysis(ctx context.Context, sessionID, payload string) error {
	exists, err := s.sessionExists(ctx, s.db, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("upsert analysis %s: %w", sessionID, ErrSessionNotFound)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO analyses (session_id, payload, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(session_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		sessionID,
		payload,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// Analysis returns the stored analysis for a session, or (nil, nil) when no
// analysis has completed yet.
func (s *Store) Analysis(ctx context.Context, sessionID string) (*Analysis, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT session_id, payload, updated_at FROM analyses WHERE session_id = ?`,
		sessionID,
	)
	var (
		analysis   Analysis
		updatedRaw string
	)
	err := row.Scan(&analysis.SessionID, &analysis.Payload, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		analysis.UpdatedAt = updated
	}
	return &analysis, nil
}
