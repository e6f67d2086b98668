package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/digtrack/digtrack-go/internal/types"
)

// User management endpoints. These are admin-gated server-side; the client
// forwards requests as-is.

func ListUsers(ctx context.Context, hc HTTPClient, baseURL string) ([]types.User, error) {
	endpoint := fmt.Sprintf("%s/users", baseURL)
	var users []types.User
	if err := getJSON(ctx, hc, "list users", endpoint, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func CreateUser(ctx context.Context, hc HTTPClient, baseURL string, req types.CreateUserRequest) (*types.User, error) {
	endpoint := fmt.Sprintf("%s/users", baseURL)
	data, err := roundTrip(ctx, hc, "create user", http.MethodPost, endpoint, req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	var u types.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func UpdateUser(ctx context.Context, hc HTTPClient, baseURL, id string, req types.UpdateUserRequest) (*types.User, error) {
	endpoint := fmt.Sprintf("%s/users/%s", baseURL, url.PathEscape(id))
	data, err := roundTrip(ctx, hc, "update user", http.MethodPut, endpoint, req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var u types.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func DeleteUser(ctx context.Context, hc HTTPClient, baseURL, id string) error {
	endpoint := fmt.Sprintf("%s/users/%s", baseURL, url.PathEscape(id))
	_, err := roundTrip(ctx, hc, "delete user", http.MethodDelete, endpoint, nil, http.StatusNoContent)
	return err
}
