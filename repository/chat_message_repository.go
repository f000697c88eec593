package repository

import (
	"context"

	"deelaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageStore is the chat message persistence contract consumed by the
// service layer.
type MessageStore interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error)
}

// ChatMessageRepository handles database operations for chat messages
type ChatMessageRepository struct {
	db *pgxpool.Pool
}

// NewChatMessageRepository creates a new chat message repository
func NewChatMessageRepository(db *pgxpool.Pool) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// Create creates a new chat message
func (r *ChatMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (user_id, content, is_user, audio_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		message.UserID,
		message.Content,
		message.IsUser,
		message.AudioURL,
	).Scan(&message.ID, &message.CreatedAt)

	return err
}

// GetByID retrieves a chat message by ID
func (r *ChatMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatMessage, error) {
	message := &models.ChatMessage{}
	query := `
		SELECT id, user_id, content, is_user, audio_url, created_at
		FROM chat_messages
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&message.ID,
		&message.UserID,
		&message.Content,
		&message.IsUser,
		&message.AudioURL,
		&message.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return message, nil
}

// ListByUserID retrieves all messages for a user in creation order
func (r *ChatMessageRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, content, is_user, audio_url, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		message := &models.ChatMessage{}
		err := rows.Scan(
			&message.ID,
			&message.UserID,
			&message.Content,
			&message.IsUser,
			&message.AudioURL,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
