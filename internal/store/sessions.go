package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession inserts a new session and its position-0 opening message in a
// single transaction. The opening line and the session row are never observable
// separately.
func (s *Store) CreateSession(ctx context.Context, scenarioID, openingMessage string) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:         uuid.NewString(),
		ScenarioID: scenarioID,
		CreatedAt:  now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (id, scenario_id, created_at) VALUES (?, ?, ?)`,
		session.ID,
		session.ScenarioID,
		now.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO messages (session_id, role, content, position) VALUES (?, ?, ?, 0)`,
		session.ID,
		RoleAssistant,
		openingMessage,
	); err != nil {
		return nil, fmt.Errorf("insert opening message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return session, nil
}

// GetSession fetches a session by id. Returns (nil, nil) when absent.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, scenario_id, created_at FROM sessions WHERE id = ?`,
		id,
	)
	var (
		session    Session
		createdRaw string
	)
	err := row.Scan(&session.ID, &session.ScenarioID, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		session.CreatedAt = created
	}
	return &session, nil
}

// ListSessions returns all sessions newest-first, each with its derived
// one-line summary (the first participant message) and whether an analysis
// row exists.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT s.id, s.created_at,
               COALESCE((
                   SELECT m.content FROM messages m
                   WHERE m.session_id = s.id AND m.role = ?
                   ORDER BY m.position LIMIT 1
               ), ''),
               EXISTS(SELECT 1 FROM analyses a WHERE a.session_id = s.id)
        FROM sessions s
        ORDER BY s.created_at DESC, s.id DESC`,
		RoleParticipant,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var (
			summary    SessionSummary
			createdRaw string
			analyzed   int
		)
		if err := rows.Scan(&summary.ID, &createdRaw, &summary.Summary, &analyzed); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			summary.CreatedAt = created
		}
		summary.Analyzed = analyzed != 0
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteSession removes a session; messages and any analysis cascade.
func (s *Store) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// CollectStats returns aggregate row counts for diagnostics.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, `
        SELECT (SELECT COUNT(1) FROM sessions),
               (SELECT COUNT(1) FROM messages),
               (SELECT COUNT(1) FROM analyses)`)
	if err := row.Scan(&stats.Sessions, &stats.Messages, &stats.Analyzed); err != nil {
		return Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}
