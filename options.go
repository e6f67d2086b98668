package digtrack

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/digtrack/digtrack-go/internal/session"
)

// defaultReadRetries bounds attempts for safe read operations. Mutations are
// never retried automatically.
const defaultReadRetries = 3

// Option configures a Client during construction in New.
//
// Options are applied before the credential transport wrapper is installed,
// so transport-related options (like debug logging) sit underneath the
// Authorization wrapper. Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP
// request. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithSessionStore replaces the default file-backed session store. Used by
// tests and by hosts that manage their own credential persistence.
func WithSessionStore(s session.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("session store cannot be nil")
		}
		c.store = s
		return nil
	}
}

// WithExpiringThreshold sets the inclusive day window that classifies an
// unexpired ticket as expiring soon. Zero is legal (only day-of tickets
// count); negative values are rejected.
func WithExpiringThreshold(days int) Option {
	return func(c *Client) error {
		if days < 0 {
			return fmt.Errorf("expiring threshold must be >= 0")
		}
		c.threshold = days
		return nil
	}
}

// WithReadRetries caps the attempts for list/get/stats calls. Retries apply
// only to recoverable failures (network errors, 5xx). A value of 1 disables
// retrying.
func WithReadRetries(attempts int) Option {
	return func(c *Client) error {
		if attempts < 1 {
			return fmt.Errorf("read retries must be >= 1")
		}
		c.retries = attempts
		return nil
	}
}

// WithClock overrides the wall clock used for expiration classification.
// Tests use a fixed instant so day-boundary classifications are exact.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// The debug transport is installed beneath the credential wrapper; logs are
// emitted before the request is forwarded to the next transport. Do not
// enable this option in production environments as it increases verbosity
// and may include headers and method/URL metadata in logs.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}
