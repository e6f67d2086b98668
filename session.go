package digtrack

import (
	"context"
	"strings"
	"sync"

	"github.com/digtrack/digtrack-go/internal/api"
	"github.com/digtrack/digtrack-go/internal/apierr"
	"github.com/digtrack/digtrack-go/internal/session"
	"github.com/digtrack/digtrack-go/internal/types"
)

// authState tracks the in-memory session. The credential itself lives only
// in the session store; this holds the resolved identity and the bookkeeping
// around verification.
type authState struct {
	// verifyMu serializes verification and bootstrap so concurrent attempts
	// for the same token observe one outcome instead of racing the store.
	verifyMu sync.Mutex

	mu         sync.RWMutex
	identity   *types.Identity
	linkSentTo string

	// verified records the outcome per token. Magic-link tokens are single
	// use server-side, so a repeated call for the same token must replay the
	// first outcome rather than burn a second attempt.
	verified map[string]verifyOutcome
}

type verifyOutcome struct {
	identity *types.Identity
	err      error
}

// RequestMagicLink asks the identity service to email a single-use login
// link. The session state is unchanged either way; on success the submitted
// address is recorded for UI display (see LinkSentTo). Safe to call
// repeatedly; dedup and rate limiting are the issuing service's concern.
func (c *Client) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apierr.Validation("email is required")
	}
	resp, err := api.RequestMagicLink(ctx, c.http, c.baseURL, email)
	if err != nil {
		return err
	}
	c.auth.mu.Lock()
	c.auth.linkSentTo = resp.Email
	c.auth.mu.Unlock()
	c.log.Info().Str("email", resp.Email).Msg("magic link requested")
	return nil
}

// LinkSentTo returns the address the most recent magic link was sent to, or
// "" when none was requested this session.
func (c *Client) LinkSentTo() string {
	c.auth.mu.RLock()
	defer c.auth.mu.RUnlock()
	return c.auth.linkSentTo
}

// VerifyMagicLink exchanges a magic-link token for an authenticated session.
// On success the credential and identity are persisted together and the
// session becomes authenticated. On failure any partial state is cleared and
// the service's reason is returned.
//
// Verification is serialized: a concurrent or repeated call for the same
// token waits for the first attempt and observes its outcome, it never
// issues a second network attempt for a single-use token.
func (c *Client) VerifyMagicLink(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apierr.Validation("token is required")
	}

	c.auth.verifyMu.Lock()
	defer c.auth.verifyMu.Unlock()

	c.auth.mu.Lock()
	if prev, ok := c.auth.verified[token]; ok {
		c.auth.mu.Unlock()
		verificationsTotal.WithLabelValues("replayed").Inc()
		return cloneIdentity(prev.identity), prev.err
	}
	c.auth.mu.Unlock()

	identity, err := c.verifyOnce(ctx, token)

	// Record the outcome so a duplicate submission replays it instead of
	// burning a second attempt. Transient transport failures are not
	// recorded: the token was never consumed, a retry is legitimate.
	if err == nil || !apierr.IsRecoverable(err) {
		c.auth.mu.Lock()
		if c.auth.verified == nil {
			c.auth.verified = make(map[string]verifyOutcome)
		}
		c.auth.verified[token] = verifyOutcome{identity: identity, err: err}
		c.auth.mu.Unlock()
	}

	if err != nil {
		verificationsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	verificationsTotal.WithLabelValues("success").Inc()
	return cloneIdentity(identity), nil
}

// verifyOnce performs the single network verification attempt and settles
// the session into a definite state. Caller holds verifyMu.
func (c *Client) verifyOnce(ctx context.Context, token string) (*types.Identity, error) {
	resp, err := api.VerifyMagicLink(ctx, c.http, c.baseURL, token)
	if err != nil {
		c.resetSession()
		c.log.Warn().Err(err).Msg("magic link verification failed")
		return nil, err
	}
	// Credential and identity arrive as a unit. One without the other is a
	// protocol error and nothing may be stored.
	if resp.AccessToken == "" || resp.User == nil {
		c.resetSession()
		return nil, apierr.New(apierr.KindService, "verification response missing credential or identity")
	}

	if err := c.store.Set(&session.State{
		Credential: resp.AccessToken,
		Identity:   *resp.User,
	}); err != nil {
		c.resetSession()
		return nil, apierr.New(apierr.KindService, "persist session: "+err.Error())
	}

	c.auth.mu.Lock()
	c.auth.identity = resp.User
	c.auth.mu.Unlock()
	// A new session invalidates anything cached under the previous one.
	c.cache.Reset()

	c.log.Info().Str("user", resp.User.ID).Str("role", resp.User.Role).Msg("session established")
	return resp.User, nil
}

// Bootstrap restores the session persisted on this device, if any. It is a
// best-effort probe run once at process start: every failure path (no stored
// credential, unreadable store, rejected credential, network error) settles
// as unauthenticated with the store cleared, and is never surfaced as an
// error. Returns the authenticated identity or nil.
func (c *Client) Bootstrap(ctx context.Context) *Identity {
	c.auth.verifyMu.Lock()
	defer c.auth.verifyMu.Unlock()

	st, err := c.store.Get()
	if err != nil {
		c.log.Debug().Err(err).Msg("bootstrap: unreadable session store, clearing")
		c.resetSession()
		return nil
	}
	if st == nil {
		return nil
	}

	identity, err := api.ResolveIdentity(ctx, c.http, c.baseURL)
	if err != nil {
		// Expected steady state for an expired session; recover silently.
		// Transient failures clear too: the session must settle in a
		// definite state, and the next login re-establishes it.
		c.log.Debug().Err(err).Msg("bootstrap: identity probe failed, clearing session")
		c.resetSession()
		return nil
	}

	// Refresh the persisted identity snapshot alongside the credential.
	if err := c.store.Set(&session.State{
		Credential: st.Credential,
		Identity:   *identity,
		DeviceID:   st.DeviceID,
	}); err != nil {
		c.log.Debug().Err(err).Msg("bootstrap: persist refreshed session failed")
	}

	c.auth.mu.Lock()
	c.auth.identity = identity
	c.auth.mu.Unlock()
	c.log.Info().Str("user", identity.ID).Msg("session restored")
	return cloneIdentity(identity)
}

// Logout clears the session unconditionally: store, in-memory identity,
// recorded verification outcomes and the ticket cache. It is local-only (the
// server-side credential is not revoked) and idempotent.
func (c *Client) Logout() error {
	err := c.store.Clear()

	c.auth.mu.Lock()
	c.auth.identity = nil
	c.auth.linkSentTo = ""
	c.auth.verified = nil
	c.auth.mu.Unlock()
	c.cache.Reset()

	if err != nil {
		return apierr.New(apierr.KindService, "clear session: "+err.Error())
	}
	c.log.Info().Msg("logged out")
	return nil
}

// Identity returns a copy of the authenticated identity, or nil when the
// session is unauthenticated.
func (c *Client) Identity() *Identity {
	c.auth.mu.RLock()
	defer c.auth.mu.RUnlock()
	return cloneIdentity(c.auth.identity)
}

// IsAuthenticated reports whether the session currently holds an identity.
func (c *Client) IsAuthenticated() bool {
	return c.Identity() != nil
}

// requireAuth gates mutating operations: without an identity the request is
// rejected before it can reach the persistence service.
func (c *Client) requireAuth() error {
	if c.IsAuthenticated() {
		return nil
	}
	return &apierr.Error{Kind: apierr.KindAuth, Detail: "not authenticated", Underlying: ErrNotAuthenticated}
}

// resetSession drops the persisted and in-memory session state. Store errors
// during reset are logged, not returned: reset is itself the failure path.
func (c *Client) resetSession() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("clear session store failed")
	}
	c.auth.mu.Lock()
	c.auth.identity = nil
	c.auth.mu.Unlock()
}

func cloneIdentity(id *types.Identity) *types.Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}
