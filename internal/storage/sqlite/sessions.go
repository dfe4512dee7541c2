package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sandevgo/recall/internal/core"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) CreateSession(ctx context.Context, userID, title string) (*core.Session, error) {
	id := uuid.New().String()

	query := `INSERT INTO sessions (id, user_id, title) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, userID, title); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return r.GetSession(ctx, id)
}

func (r *SessionsRepo) GetSession(ctx context.Context, id string) (*core.Session, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM sessions WHERE id = ?`

	var s core.Session
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SessionsRepo) ListSessions(ctx context.Context, userID string) ([]core.Session, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM sessions WHERE user_id = ? ORDER BY updated_at DESC`
	return r.querySessions(ctx, query, userID)
}

func (r *SessionsRepo) SearchSessions(ctx context.Context, userID, search string) ([]core.Session, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM sessions WHERE user_id = ? AND title LIKE ? ORDER BY updated_at DESC`
	return r.querySessions(ctx, query, userID, "%"+search+"%")
}

func (r *SessionsRepo) RenameSession(ctx context.Context, id, title string) error {
	query := `UPDATE sessions SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, title, id)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// DeleteSession removes the session row and its transcript in one
// transaction. Memory records for the session live in the vector store and
// are deleted separately by the caller.
func (r *SessionsRepo) DeleteSession(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return tx.Commit()
}

func (r *SessionsRepo) querySessions(ctx context.Context, query string, args ...any) ([]core.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var s core.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
