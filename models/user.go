package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TokenKind names one of the four quota counters.
type TokenKind string

const (
	TokenKindWords      TokenKind = "words"
	TokenKindImages     TokenKind = "images"
	TokenKindMinutes    TokenKind = "minutes"
	TokenKindCharacters TokenKind = "characters"
)

// Tokens is the four-counter usage allowance stored as JSONB on the user row.
// Counters are only ever decremented by the chat flow; replenishment happens
// through billing.
type Tokens struct {
	Words      int `json:"words"`
	Images     int `json:"images"`
	Minutes    int `json:"minutes"`
	Characters int `json:"characters"`
}

// DefaultTokens returns the allowance assigned to every new account.
func DefaultTokens() Tokens {
	return Tokens{
		Words:      5000,
		Images:     0,
		Minutes:    5,
		Characters: 1000,
	}
}

// Value implements driver.Valuer for JSONB
func (t Tokens) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB
func (t *Tokens) Scan(value interface{}) error {
	if value == nil {
		*t = DefaultTokens()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*t = DefaultTokens()
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// Plan holds the subscription plan assigned by billing (nil until purchased)
type Plan map[string]interface{}

// Value implements driver.Valuer for JSONB
func (p Plan) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *Plan) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// User represents a user entity
type User struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // Never serialize password hash
	Tokens          Tokens     `json:"tokens"`
	Avatar          *string    `json:"avatar,omitempty"`
	Role            string     `json:"role"`
	Plan            Plan       `json:"plan,omitempty"`
	ReferralID      *string    `json:"referral_id,omitempty"`
	Company         *string    `json:"company,omitempty"`
	Website         *string    `json:"website,omitempty"`
	City            *string    `json:"city,omitempty"`
	Country         *string    `json:"country,omitempty"`
	JobRole         *string    `json:"job_role,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EmailVerified reports whether the out-of-band confirmation step completed.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
