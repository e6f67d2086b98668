package api

import (
	"errors"
	"net/http"
)

// errRT is a RoundTripper that always fails, simulating network errors.
type errRT struct{}

func (errRT) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func failingClient() *http.Client {
	return &http.Client{Transport: &errRT{}}
}
