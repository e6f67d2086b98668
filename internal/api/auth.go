package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digtrack/digtrack-go/internal/types"
)

// RequestMagicLink asks the identity service to email a single-use login
// link. Each call is an independent request; dedup and rate limiting are the
// server's concern.
func RequestMagicLink(ctx context.Context, hc HTTPClient, baseURL, email string) (*types.MagicLinkResponse, error) {
	endpoint := fmt.Sprintf("%s/auth/request-magic-link", baseURL)
	data, err := roundTrip(ctx, hc, "request magic link", http.MethodPost, endpoint,
		types.MagicLinkRequest{Email: email}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var resp types.MagicLinkResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyMagicLink exchanges a magic-link token for a credential and the
// authenticated identity. Tokens are single-use server-side.
func VerifyMagicLink(ctx context.Context, hc HTTPClient, baseURL, token string) (*types.VerifyResponse, error) {
	endpoint := fmt.Sprintf("%s/auth/verify-magic-link?token=%s", baseURL, url.QueryEscape(token))
	var resp types.VerifyResponse
	if err := getJSON(ctx, hc, "verify magic link", endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResolveIdentity returns the identity the current credential belongs to.
// The credential travels in the Authorization header set by the transport.
func ResolveIdentity(ctx context.Context, hc HTTPClient, baseURL string) (*types.Identity, error) {
	endpoint := fmt.Sprintf("%s/auth/me", baseURL)
	var id types.Identity
	if err := getJSON(ctx, hc, "resolve identity", endpoint, &id); err != nil {
		return nil, err
	}
	return &id, nil
}
