package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper lets tests script the gateway's responses.
type mockRoundTripper struct {
	responses []*http.Response
	err       error
	requests  []*http.Request
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func gatewayResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func successBody(txStatus string, tokenAmount int, purchaseType, planID string) string {
	return fmt.Sprintf(`{
		"status": true,
		"message": "Verification successful",
		"data": {
			"status": %q,
			"amount": 500000,
			"currency": "NGN",
			"metadata": {
				"type": %q,
				"planId": %q,
				"tokenAmount": %d,
				"userId": "ignored"
			}
		}
	}`, txStatus, purchaseType, planID, tokenAmount)
}

func newTestBillingService(rt *mockRoundTripper, users *fakeUserStore) *BillingService {
	return NewBillingService(
		BillingWithUserStore(users),
		BillingWithTokenService(NewTokenService(users)),
		BillingWithHTTPClient(&http.Client{Transport: rt}),
		BillingWithSecretKey("sk_test_secret"),
	)
}

func TestVerifyPurchaseGrantsWords(t *testing.T) {
	user := testUser(100)
	users := newFakeUserStore(user)
	rt := &mockRoundTripper{responses: []*http.Response{
		gatewayResponse(http.StatusOK, successBody("success", 10000, "token", "")),
	}}
	svc := newTestBillingService(rt, users)

	result, err := svc.VerifyPurchase(context.Background(), user, "ref_abc123")
	require.NoError(t, err)
	assert.Equal(t, 10100, result.Tokens.Words)

	require.Len(t, rt.requests, 1)
	assert.Equal(t, "Bearer sk_test_secret", rt.requests[0].Header.Get("Authorization"))
	assert.Contains(t, rt.requests[0].URL.String(), "ref_abc123")

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10100, stored.Tokens.Words)
}

func TestVerifyPurchaseRecordsSubscriptionPlan(t *testing.T) {
	user := testUser(100)
	users := newFakeUserStore(user)
	rt := &mockRoundTripper{responses: []*http.Response{
		gatewayResponse(http.StatusOK, successBody("success", 50000, "subscription", "plan_pro")),
	}}
	svc := newTestBillingService(rt, users)

	_, err := svc.VerifyPurchase(context.Background(), user, "ref_sub456")
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Plan)
	assert.Equal(t, "plan_pro", stored.Plan["id"])
	assert.Equal(t, 50100, stored.Tokens.Words)
}

func TestVerifyPurchaseNotSuccessful(t *testing.T) {
	user := testUser(100)
	users := newFakeUserStore(user)
	rt := &mockRoundTripper{responses: []*http.Response{
		gatewayResponse(http.StatusOK, successBody("failed", 10000, "token", "")),
	}}
	svc := newTestBillingService(rt, users)

	_, err := svc.VerifyPurchase(context.Background(), user, "ref_failed")
	require.ErrorIs(t, err, ErrPaymentNotSuccess)

	// No grant on a failed transaction
	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Tokens.Words)
}

func TestVerifyPurchaseUnknownReference(t *testing.T) {
	user := testUser(100)
	users := newFakeUserStore(user)
	rt := &mockRoundTripper{responses: []*http.Response{
		gatewayResponse(http.StatusNotFound, `{"status": false, "message": "Transaction reference not found"}`),
	}}
	svc := newTestBillingService(rt, users)

	_, err := svc.VerifyPurchase(context.Background(), user, "ref_missing")
	require.ErrorIs(t, err, ErrPaymentNotFound)
	assert.Len(t, rt.requests, 1)
}

func TestVerifyPurchaseRetriesServerErrors(t *testing.T) {
	user := testUser(100)
	users := newFakeUserStore(user)
	rt := &mockRoundTripper{responses: []*http.Response{
		gatewayResponse(http.StatusBadGateway, ""),
		gatewayResponse(http.StatusOK, successBody("success", 1000, "token", "")),
	}}
	svc := newTestBillingService(rt, users)

	result, err := svc.VerifyPurchase(context.Background(), user, "ref_retry")
	require.NoError(t, err)
	assert.Equal(t, 1100, result.Tokens.Words)
	assert.Len(t, rt.requests, 2)
}

func TestVerifyPurchaseEmptyReference(t *testing.T) {
	user := testUser(100)
	users := newFakeUserStore(user)
	svc := newTestBillingService(&mockRoundTripper{}, users)

	_, err := svc.VerifyPurchase(context.Background(), user, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}
