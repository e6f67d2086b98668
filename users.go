package digtrack

import (
	"context"
	"strings"

	"github.com/digtrack/digtrack-go/internal/api"
	"github.com/digtrack/digtrack-go/internal/apierr"
)

// User management passthrough. These endpoints are admin-gated server-side;
// the client forwards the session role opaquely and performs no policy
// checks of its own. Nothing here is cached.

// ListUsers returns all managed accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.retryRead(ctx, func() error {
		var e error
		users, e = api.ListUsers(ctx, c.http, c.baseURL)
		return e
	})
	return users, err
}

// CreateUser provisions a new account.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, apierr.Validation("email is required")
	}
	return api.CreateUser(ctx, c.http, c.baseURL, req)
}

// UpdateUser changes the provided account fields.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Validation("user id is required")
	}
	return api.UpdateUser(ctx, c.http, c.baseURL, id, req)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apierr.Validation("user id is required")
	}
	return api.DeleteUser(ctx, c.http, c.baseURL, id)
}
