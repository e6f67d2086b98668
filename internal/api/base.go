// Package api contains the HTTP functions for each backend endpoint. Every
// function takes the caller's context, an *http.Client and the service base
// URL; authentication headers are injected by the client's transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/digtrack/digtrack-go/internal/apierr"
)

// HTTPClient interface for dependency injection.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// roundTrip issues one request and returns the response body when the status
// matches want. Any other status is classified through apierr with the
// server's detail message; transport failures become recoverable Service
// errors.
func roundTrip(ctx context.Context, hc HTTPClient, op, method, url string, payload any, want int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, apierr.Network(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Network(op, err)
	}
	if resp.StatusCode != want {
		return nil, apierr.FromResponse(op, resp.StatusCode, data)
	}
	return data, nil
}

// getJSON issues a GET expecting 200 and decodes the body into out.
func getJSON(ctx context.Context, hc HTTPClient, op, url string, out any) error {
	data, err := roundTrip(ctx, hc, op, http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
