package repository

import (
	"context"

	"deelaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore is the user persistence contract consumed by the service layer.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, tokens models.Tokens) error
	UpdatePlan(ctx context.Context, id uuid.UUID, plan models.Plan) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	VerifyByToken(ctx context.Context, token string) (*models.User, error)
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, tokens,
	avatar, role, plan, referral_id, company, website, city, country, job_role,
	email_verified_at, created_at, updated_at`

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			first_name, last_name, email, password_hash, tokens, role
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	if user.Role == "" {
		user.Role = "user"
	}

	err := r.db.QueryRow(
		ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Tokens,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

// UpdateTokens overwrites the whole tokens structure. The ledger is a single
// JSONB column, so concurrent writers are last-write-wins.
func (r *UserRepository) UpdateTokens(ctx context.Context, id uuid.UUID, tokens models.Tokens) error {
	query := `UPDATE users SET tokens = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, tokens)
	return err
}

// UpdatePlan sets the billing plan
func (r *UserRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan models.Plan) error {
	query := `UPDATE users SET plan = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, plan)
	return err
}

// MarkEmailVerified records completion of the email confirmation step
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET email_verified_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// SetVerificationToken stores a pending email verification token
func (r *UserRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET email_verification_token = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, token)
	return err
}

// VerifyByToken marks the user holding the pending token as verified and
// clears the token.
func (r *UserRepository) VerifyByToken(ctx context.Context, token string) (*models.User, error) {
	query := `
		UPDATE users SET
			email_verified_at = NOW(),
			email_verification_token = NULL,
			updated_at = NOW()
		WHERE email_verification_token = $1
		RETURNING ` + userColumns
	return r.scanUser(r.db.QueryRow(ctx, query, token))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Tokens,
		&user.Avatar,
		&user.Role,
		&user.Plan,
		&user.ReferralID,
		&user.Company,
		&user.Website,
		&user.City,
		&user.Country,
		&user.JobRole,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
