package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"deelaw-backend/models"
	"deelaw-backend/repository"
)

var (
	ErrPaymentNotFound    = errors.New("transaction reference not found")
	ErrPaymentNotSuccess  = errors.New("transaction was not successful")
	ErrVerificationFailed = errors.New("failed to verify transaction")
)

const (
	paystackVerifyAPI = "https://api.paystack.co/transaction/verify/%s"
	maxRetries        = 3
	initialBackoff    = time.Second
)

// BillingService verifies completed checkout transactions against the payment
// gateway and grants the purchased allowance. This is the only path that ever
// replenishes a user's counters.
type BillingService struct {
	users      repository.UserStore
	tokens     *TokenService
	httpClient *http.Client
	secretKey  string
}

// BillingServiceOption is a functional option for BillingService
type BillingServiceOption func(*BillingService)

// BillingWithUserStore sets the user store
func BillingWithUserStore(users repository.UserStore) BillingServiceOption {
	return func(s *BillingService) {
		s.users = users
	}
}

// BillingWithTokenService sets the token service
func BillingWithTokenService(tokens *TokenService) BillingServiceOption {
	return func(s *BillingService) {
		s.tokens = tokens
	}
}

// BillingWithHTTPClient sets the HTTP client used for gateway calls
func BillingWithHTTPClient(client *http.Client) BillingServiceOption {
	return func(s *BillingService) {
		s.httpClient = client
	}
}

// BillingWithSecretKey sets the gateway secret key
func BillingWithSecretKey(key string) BillingServiceOption {
	return func(s *BillingService) {
		s.secretKey = key
	}
}

// NewBillingService creates a new billing service
func NewBillingService(opts ...BillingServiceOption) *BillingService {
	s := &BillingService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if s.secretKey == "" {
		s.secretKey = os.Getenv("PAYSTACK_SECRET_KEY")
	}
	return s
}

// verifyResponse mirrors the gateway's transaction verify payload
type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string `json:"status"`
		Amount   int    `json:"amount"`
		Currency string `json:"currency"`
		Metadata struct {
			Type        string `json:"type"`
			PlanID      string `json:"planId"`
			TokenAmount int    `json:"tokenAmount"`
			UserID      string `json:"userId"`
		} `json:"metadata"`
	} `json:"data"`
}

// VerifyPurchaseResult represents the outcome of a verified purchase
type VerifyPurchaseResult struct {
	Tokens *models.Tokens
}

// VerifyPurchase checks a checkout reference with the gateway and, on a
// successful transaction, grants the purchased word allowance (and records
// the plan for subscription purchases).
func (s *BillingService) VerifyPurchase(ctx context.Context, user *models.User, reference string) (*VerifyPurchaseResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.tokens == nil {
		return nil, errors.New("token service not set")
	}
	if reference == "" {
		return nil, ErrInvalidInput
	}
	if s.secretKey == "" {
		return nil, errors.New("PAYSTACK_SECRET_KEY not set")
	}

	verification, err := s.verifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	if verification.Data.Status != "success" {
		return nil, ErrPaymentNotSuccess
	}

	if verification.Data.Metadata.Type == "subscription" && verification.Data.Metadata.PlanID != "" {
		plan := models.Plan{
			"id":           verification.Data.Metadata.PlanID,
			"reference":    reference,
			"purchased_at": time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.users.UpdatePlan(ctx, user.ID, plan); err != nil {
			log.Printf("Warning: failed to record plan for user %s: %v", user.ID, err)
		}
	}

	grants := models.Tokens{Words: verification.Data.Metadata.TokenAmount}
	tokens, err := s.tokens.Grant(ctx, user.ID, grants)
	if err != nil {
		return nil, err
	}

	return &VerifyPurchaseResult{Tokens: tokens}, nil
}

// verifyTransaction calls the gateway's verify endpoint with retry and
// exponential backoff. 4xx responses are terminal; 5xx and transport errors
// are retried.
func (s *BillingService) verifyTransaction(ctx context.Context, reference string) (*verifyResponse, error) {
	url := fmt.Sprintf(paystackVerifyAPI, reference)

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.secretKey)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to reach gateway after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var verification verifyResponse
			if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode gateway response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			if !verification.Status {
				return nil, ErrPaymentNotFound
			}
			return &verification, nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrPaymentNotFound
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, fmt.Errorf("gateway error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("gateway error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrVerificationFailed
}
