package digtrack

import (
	"context"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/digtrack/digtrack-go/internal/api"
	"github.com/digtrack/digtrack-go/internal/apierr"
	"github.com/digtrack/digtrack-go/internal/cache"
	"github.com/digtrack/digtrack-go/internal/expiry"
	"github.com/digtrack/digtrack-go/internal/types"
)

// Cached set families. A mutation stale-marks the whole list family and the
// stats set; patching individual entries is deliberately avoided because
// derived aggregates cannot be updated correctly from a single delta.
const (
	setTickets = "tickets"
	setTicket  = "ticket"
	setStats   = "stats"
)

func listKey(req types.ListTicketsRequest) cache.Key {
	return cache.NewKey(setTickets, api.ListQuery(req))
}

func ticketKey(id string) cache.Key {
	return cache.NewKey(setTicket, map[string]string{"id": id})
}

// --------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------

// ListTickets returns one page of tickets matching the filters, each
// annotated with its expiration view. Results are cached per normalized
// query; a fresh cached set is served without a network round trip.
func (c *Client) ListTickets(ctx context.Context, req ListTicketsRequest) (*TicketList, error) {
	key := listKey(req)
	if v, ok := c.cache.Lookup(key); ok {
		cacheHitsTotal.WithLabelValues(setTickets).Inc()
		return c.annotateList(v.(*types.TicketList)), nil
	}
	cacheMissesTotal.WithLabelValues(setTickets).Inc()

	tok := c.cache.Begin(key)
	var list *types.TicketList
	err := c.retryRead(ctx, func() error {
		var e error
		list, e = api.ListTickets(ctx, c.http, c.baseURL, req)
		return e
	})
	if err != nil {
		return nil, err
	}
	if !c.cache.Complete(key, tok, list) {
		staleFetchesDiscardedTotal.Inc()
	}
	return c.annotateList(list), nil
}

// GetTicket returns a single annotated ticket. Fails with a not-found error
// when the service reports no such id.
func (c *Client) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Validation("ticket id is required")
	}
	key := ticketKey(id)
	if v, ok := c.cache.Lookup(key); ok {
		cacheHitsTotal.WithLabelValues(setTicket).Inc()
		return c.annotateTicket(v.(*types.Ticket)), nil
	}
	cacheMissesTotal.WithLabelValues(setTicket).Inc()

	tok := c.cache.Begin(key)
	var tk *types.Ticket
	err := c.retryRead(ctx, func() error {
		var e error
		tk, e = api.GetTicket(ctx, c.http, c.baseURL, id)
		return e
	})
	if err != nil {
		return nil, err
	}
	if !c.cache.Complete(key, tok, tk) {
		staleFetchesDiscardedTotal.Inc()
	}
	return c.annotateTicket(tk), nil
}

// TicketStats returns the aggregate dashboard counts, cached until the next
// mutation.
func (c *Client) TicketStats(ctx context.Context) (*TicketStats, error) {
	key := cache.Key(setStats)
	if v, ok := c.cache.Lookup(key); ok {
		cacheHitsTotal.WithLabelValues(setStats).Inc()
		return copyStats(v.(*types.TicketStats)), nil
	}
	cacheMissesTotal.WithLabelValues(setStats).Inc()

	tok := c.cache.Begin(key)
	var stats *types.TicketStats
	err := c.retryRead(ctx, func() error {
		var e error
		stats, e = api.GetTicketStats(ctx, c.http, c.baseURL)
		return e
	})
	if err != nil {
		return nil, err
	}
	if !c.cache.Complete(key, tok, stats) {
		staleFetchesDiscardedTotal.Inc()
	}
	return copyStats(stats), nil
}

// copyStats detaches the returned stats from the cached entry: a shallow
// struct copy would still share the by-state map.
func copyStats(s *types.TicketStats) *types.TicketStats {
	out := *s
	if s.TicketsByState != nil {
		out.TicketsByState = make(map[string]int, len(s.TicketsByState))
		for k, v := range s.TicketsByState {
			out.TicketsByState[k] = v
		}
	}
	return &out
}

// Summarize classifies every ticket independently against the same instant
// and tallies the statuses. Use this for locally derived dashboard counts;
// it never reuses cached per-status tallies.
func (c *Client) Summarize(tickets []Ticket) Summary {
	dates := make([]*expiry.Date, len(tickets))
	for i := range tickets {
		dates[i] = tickets[i].ExpirationDate
	}
	return expiry.Summarize(dates, c.now(), c.threshold)
}

// --------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------

// CreateTicket submits a new ticket. The service is authoritative for
// ticket-number uniqueness; a duplicate surfaces as a conflict error
// (IsConflict) so the caller can re-prompt instead of retrying blindly.
func (c *Client) CreateTicket(ctx context.Context, req CreateTicketRequest) (*Ticket, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TicketNumber) == "" {
		return nil, apierr.Validation("ticket_number is required")
	}
	if strings.TrimSpace(req.JobName) == "" {
		return nil, apierr.Validation("job_name is required")
	}
	if strings.TrimSpace(req.State) == "" {
		return nil, apierr.Validation("state is required")
	}
	if req.SubmitDate.IsZero() {
		return nil, apierr.Validation("submit_date is required")
	}

	tk, err := api.CreateTicket(ctx, c.http, c.baseURL, req)
	if err != nil {
		return nil, err
	}
	c.invalidateAfterMutation(tk.ID)
	return c.annotateTicket(tk), nil
}

// UpdateTicket replaces the provided fields of a ticket. The ticket number
// is immutable: a request attempting to change it is rejected before
// dispatch. A request restating the current number is allowed (the field
// never travels on the wire either way).
func (c *Client) UpdateTicket(ctx context.Context, id string, req UpdateTicketRequest) (*Ticket, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Validation("ticket id is required")
	}
	if req.TicketNumber != nil {
		current, err := c.GetTicket(ctx, id)
		if err != nil {
			return nil, err
		}
		if *req.TicketNumber != current.TicketNumber {
			return nil, apierr.Validation("ticket_number is immutable")
		}
	}

	tk, err := api.UpdateTicket(ctx, c.http, c.baseURL, id, req)
	if err != nil {
		return nil, err
	}
	c.invalidateAfterMutation(id)
	return c.annotateTicket(tk), nil
}

// RenewTicket replaces a ticket's expiration date. Renewal is the single
// most common workflow, so it gets a dedicated operation rather than going
// through UpdateTicket. The new date must be well-formed but may lie in the
// past; a backdated correction is legitimate.
func (c *Client) RenewTicket(ctx context.Context, id string, newExpiration Date) (*Ticket, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apierr.Validation("ticket id is required")
	}
	if newExpiration.IsZero() {
		return nil, apierr.Validation("new_expiration_date is required")
	}

	tk, err := api.RenewTicket(ctx, c.http, c.baseURL, id, types.RenewTicketRequest{NewExpirationDate: newExpiration})
	if err != nil {
		return nil, err
	}
	c.invalidateAfterMutation(id)
	return c.annotateTicket(tk), nil
}

// DeleteTicket removes a ticket. Deleting an id that is already gone
// reports not found; callers treating delete as idempotent can ignore that
// case via IsNotFound.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apierr.Validation("ticket id is required")
	}

	if err := api.DeleteTicket(ctx, c.http, c.baseURL, id); err != nil {
		return err
	}
	c.invalidateAfterMutation(id)
	return nil
}

// invalidateAfterMutation enforces the consistency contract: after any
// successful mutation every cached view that could reflect it (all list
// variants, the stats set and the affected single ticket) is stale-marked
// before the mutation returns, so no subsequent read can serve pre-mutation
// content.
func (c *Client) invalidateAfterMutation(id string) {
	c.cache.Invalidate(setTickets, setStats)
	if id != "" {
		c.cache.Drop(ticketKey(id))
	}
	invalidationsTotal.Inc()
}

// --------------------------------------------------------------------
// Internals
// --------------------------------------------------------------------

// retryRead runs a safe read with bounded exponential backoff. Only
// recoverable failures are retried; 4xx rejections and decode errors fail
// immediately. Mutations never pass through here.
func (c *Client) retryRead(ctx context.Context, fn func() error) error {
	if c.retries <= 1 {
		return fn()
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	attempts := 0
	return backoff.Retry(func() error {
		attempts++
		err := fn()
		if err == nil {
			return nil
		}
		if !apierr.IsRecoverable(err) || attempts >= c.retries {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// annotateTicket returns a copy of t carrying its expiration view, derived
// against the client clock. The view is rebuilt on every read, never cached.
func (c *Client) annotateTicket(t *types.Ticket) *types.Ticket {
	cp := *t
	cp.Expiration = expiry.Classify(cp.ExpirationDate, c.now(), c.threshold)
	return &cp
}

// annotateList copies the list so cached data is never shared mutable state
// between callers, annotating every ticket.
func (c *Client) annotateList(list *types.TicketList) *types.TicketList {
	out := &types.TicketList{
		Tickets: make([]types.Ticket, len(list.Tickets)),
		Total:   list.Total,
		Skip:    list.Skip,
		Limit:   list.Limit,
	}
	now := c.now()
	for i := range list.Tickets {
		out.Tickets[i] = list.Tickets[i]
		out.Tickets[i].Expiration = expiry.Classify(out.Tickets[i].ExpirationDate, now, c.threshold)
	}
	return out
}
