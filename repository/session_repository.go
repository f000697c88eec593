package repository

import (
	"context"

	"deelaw-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore is the bearer session persistence contract consumed by the
// service layer and the auth middleware.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	Touch(ctx context.Context, tokenHash string) error
}

// SessionRepository handles database operations for bearer sessions
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, token_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		session.UserID,
		session.TokenHash,
		session.Name,
	).Scan(&session.ID, &session.CreatedAt)

	return err
}

// GetByTokenHash retrieves a session by its hashed bearer token
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	session := &models.Session{}
	query := `
		SELECT id, user_id, token_hash, name, last_used_at, created_at
		FROM sessions
		WHERE token_hash = $1`

	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.Name,
		&session.LastUsedAt,
		&session.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteByTokenHash revokes exactly the one presented session
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	query := `DELETE FROM sessions WHERE token_hash = $1`
	_, err := r.db.Exec(ctx, query, tokenHash)
	return err
}

// Touch records when a session was last presented
func (r *SessionRepository) Touch(ctx context.Context, tokenHash string) error {
	query := `UPDATE sessions SET last_used_at = NOW() WHERE token_hash = $1`
	_, err := r.db.Exec(ctx, query, tokenHash)
	return err
}
