package store

import (
	"context"
	"fmt"
)

// Transcript returns every message for a session ordered by position. This is
// the canonical conversation order consumed by the UI and the analysis
// pipeline. Returns ErrSessionNotFound for an unknown session.
func (s *Store) Transcript(ctx context.Context, sessionID string) ([]Message, error) {
	exists, err := s.sessionExists(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("transcript %s: %w", sessionID, ErrSessionNotFound)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT role, content, position FROM messages WHERE session_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Position); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ReplaceTranscript swaps a session's entire transcript in one transaction:
// delete all existing messages, then insert the given sequence with position
// equal to the slice index. Concurrent readers see either the pre- or
// post-replace transcript, never an interleaving; two concurrent replaces
// apply in some order but each lands whole.
func (s *Store) ReplaceTranscript(ctx context.Context, sessionID string, messages []Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := s.sessionExists(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("replace transcript %s: %w", sessionID, ErrSessionNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}

	for i, msg := range messages {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO messages (session_id, role, content, position) VALUES (?, ?, ?, ?)`,
			sessionID,
			msg.Role,
			msg.Content,
			i,
		); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}
