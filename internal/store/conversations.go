package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"careerbot/internal/domain"
)

var ErrNotFound = errors.New("conversation not found")

// LoadConversation returns the stored conversation of userID, or
// ErrNotFound.
func (d *DB) LoadConversation(ctx context.Context, userID string) (*domain.Conversation, error) {
	conv := &domain.Conversation{UserID: userID}
	var mode, resume string
	err := d.Pool.QueryRowContext(ctx,
		`SELECT id, mode, resume FROM conversations WHERE user_id = ?;`, userID,
	).Scan(&conv.ID, &mode, &resume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	conv.Mode = domain.Mode(mode)
	if err := json.Unmarshal([]byte(resume), &conv.Resume); err != nil {
		return nil, fmt.Errorf("decode resume progress: %w", err)
	}

	rows, err := d.Pool.QueryContext(ctx,
		`SELECT role, content, candidates, created_at FROM turns WHERE conversation_id = ? ORDER BY seq;`, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t                  domain.Turn
			role, cands, stamp string
		)
		if err := rows.Scan(&role, &t.Content, &cands, &stamp); err != nil {
			return nil, err
		}
		t.Role = domain.Role(role)
		if cands != "" {
			t.Candidates = &domain.CandidateSet{}
			if err := json.Unmarshal([]byte(cands), t.Candidates); err != nil {
				return nil, fmt.Errorf("decode candidates: %w", err)
			}
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, stamp)
		conv.Turns = append(conv.Turns, t)
	}
	return conv, rows.Err()
}

// SaveConversation replaces the stored conversation of conv.UserID. A
// conversation without an id gets one.
func (d *DB) SaveConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.UserID == "" {
		return errors.New("save conversation: empty user id")
	}
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	resume, err := json.Marshal(conv.Resume)
	if err != nil {
		return err
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE conversation_id IN (SELECT id FROM conversations WHERE user_id = ?);`, conv.UserID); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO conversations (id, user_id, mode, resume, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  id = excluded.id, mode = excluded.mode, resume = excluded.resume, updated_at = excluded.updated_at;`,
		conv.ID, conv.UserID, string(conv.Mode), string(resume), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO turns (conversation_id, seq, role, content, candidates, created_at) VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, t := range conv.Turns {
		var cands []byte
		if t.Candidates != nil {
			if cands, err = json.Marshal(t.Candidates); err != nil {
				return err
			}
		}
		if _, err := stmt.ExecContext(ctx, conv.ID, i, string(t.Role), t.Content, string(cands),
			t.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert turn %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ClearConversation deletes the stored conversation of userID.
func (d *DB) ClearConversation(ctx context.Context, userID string) error {
	_, err := d.Pool.ExecContext(ctx, `DELETE FROM conversations WHERE user_id = ?;`, userID)
	if err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}
