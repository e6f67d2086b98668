// Package digtrack is the client SDK for the digtrack 811 locate-ticket
// service. It owns the passwordless session lifecycle (magic-link issuance,
// single-use verification, durable session bootstrap) and the client-side
// ticket cache, and annotates every ticket it returns with its derived
// expiration state.
package digtrack

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/digtrack/digtrack-go/internal/cache"
	"github.com/digtrack/digtrack-go/internal/config"
	"github.com/digtrack/digtrack-go/internal/expiry"
	"github.com/digtrack/digtrack-go/internal/platform/logger"
	"github.com/digtrack/digtrack-go/internal/session"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL   string
	http      *http.Client
	store     session.Store
	cache     *cache.Table
	auth      authState
	threshold int
	retries   int
	now       func() time.Time
	log       zerolog.Logger
}

// New constructs a Client for the service at baseURL (including the API
// prefix, e.g. "https://tickets.example.com/api/v1"). Additional options can
// be provided via functional arguments. The session store defaults to the
// per-user file store, so an earlier login on this device is picked up by
// Bootstrap.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		cache:     cache.NewTable(),
		threshold: expiry.DefaultThreshold,
		retries:   defaultReadRetries,
		now:       time.Now,
		log:       logger.New("digtrack-client"),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.store == nil {
		path, err := session.DefaultPath()
		if err != nil {
			return nil, err
		}
		c.store = session.NewFileStore(path)
	}

	// Wrap the transport so every request carries the current credential.
	c.wrapTransportWithCredential()

	return c, nil
}

// NewFromEnv constructs a Client from DIGTRACK_* environment variables.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithHTTPTimeout(time.Duration(cfg.HTTPTimeoutSeconds) * time.Second),
		WithExpiringThreshold(cfg.ExpiringThresholdDays),
		WithReadRetries(cfg.ReadRetries),
	}
	if cfg.SessionFile != "" {
		base = append(base, WithSessionStore(session.NewFileStore(cfg.SessionFile)))
	}
	if cfg.Debug {
		base = append(base, WithDebugLogging(true))
	}
	return New(cfg.APIURL, append(base, opts...)...)
}

// wrapTransportWithCredential wraps the HTTP client's transport so every
// request carries the session's current bearer credential, if one exists.
func (c *Client) wrapTransportWithCredential() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &credentialTransport{
		base:  baseTransport,
		store: c.store,
	}
}

// credentialTransport wraps an http.RoundTripper to add the Authorization
// header from the session store. Unlike a fixed API key, the credential
// changes across login/logout, so it is read per request.
type credentialTransport struct {
	base  http.RoundTripper
	store session.Store
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	st, err := t.store.Get()
	if err != nil || st == nil {
		return t.base.RoundTrip(req)
	}
	// Clone the request to avoid modifying the original.
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+st.Credential)
	if st.DeviceID != "" {
		cloned.Header.Set("X-Device-Id", st.DeviceID)
	}
	return t.base.RoundTrip(cloned)
}
