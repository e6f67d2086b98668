package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/digtrack/digtrack-go/internal/types"
)

// ListQuery converts a list request to its query parameters. Zero values are
// omitted so equivalent queries serialize identically.
func ListQuery(req types.ListTicketsRequest) map[string]string {
	params := map[string]string{
		"status":      req.Status,
		"state":       req.State,
		"assigned_pm": req.AssignedPM,
		"search":      req.Search,
		"sort_by":     req.SortBy,
		"sort_order":  req.SortOrder,
	}
	if req.Skip > 0 {
		params["skip"] = strconv.Itoa(req.Skip)
	}
	if req.Limit > 0 {
		params["limit"] = strconv.Itoa(req.Limit)
	}
	return params
}

// ListTickets fetches one page of tickets matching the request filters.
func ListTickets(ctx context.Context, hc HTTPClient, baseURL string, req types.ListTicketsRequest) (*types.TicketList, error) {
	q := url.Values{}
	for k, v := range ListQuery(req) {
		if v != "" {
			q.Set(k, v)
		}
	}
	endpoint := fmt.Sprintf("%s/tickets", baseURL)
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}
	var list types.TicketList
	if err := getJSON(ctx, hc, "list tickets", endpoint, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetTicket fetches a single ticket by id.
func GetTicket(ctx context.Context, hc HTTPClient, baseURL, id string) (*types.Ticket, error) {
	endpoint := fmt.Sprintf("%s/tickets/%s", baseURL, url.PathEscape(id))
	var tk types.Ticket
	if err := getJSON(ctx, hc, "get ticket", endpoint, &tk); err != nil {
		return nil, err
	}
	return &tk, nil
}

// CreateTicket submits a new ticket. The server is authoritative for ticket
// number uniqueness; a duplicate surfaces as a conflict error.
func CreateTicket(ctx context.Context, hc HTTPClient, baseURL string, req types.CreateTicketRequest) (*types.Ticket, error) {
	endpoint := fmt.Sprintf("%s/tickets", baseURL)
	data, err := roundTrip(ctx, hc, "create ticket", http.MethodPost, endpoint, req, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	var tk types.Ticket
	if err := json.Unmarshal(data, &tk); err != nil {
		return nil, err
	}
	return &tk, nil
}

// UpdateTicket replaces the provided fields of an existing ticket.
func UpdateTicket(ctx context.Context, hc HTTPClient, baseURL, id string, req types.UpdateTicketRequest) (*types.Ticket, error) {
	endpoint := fmt.Sprintf("%s/tickets/%s", baseURL, url.PathEscape(id))
	data, err := roundTrip(ctx, hc, "update ticket", http.MethodPut, endpoint, req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var tk types.Ticket
	if err := json.Unmarshal(data, &tk); err != nil {
		return nil, err
	}
	return &tk, nil
}

// RenewTicket replaces a ticket's expiration date through the dedicated
// renewal endpoint.
func RenewTicket(ctx context.Context, hc HTTPClient, baseURL, id string, req types.RenewTicketRequest) (*types.Ticket, error) {
	endpoint := fmt.Sprintf("%s/tickets/%s/renew", baseURL, url.PathEscape(id))
	data, err := roundTrip(ctx, hc, "renew ticket", http.MethodPost, endpoint, req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var tk types.Ticket
	if err := json.Unmarshal(data, &tk); err != nil {
		return nil, err
	}
	return &tk, nil
}

// DeleteTicket removes a ticket. Backend returns 204 No Content on success;
// deleting an already-removed id reports not found.
func DeleteTicket(ctx context.Context, hc HTTPClient, baseURL, id string) error {
	endpoint := fmt.Sprintf("%s/tickets/%s", baseURL, url.PathEscape(id))
	_, err := roundTrip(ctx, hc, "delete ticket", http.MethodDelete, endpoint, nil, http.StatusNoContent)
	return err
}

// GetTicketStats fetches the aggregate dashboard counts.
func GetTicketStats(ctx context.Context, hc HTTPClient, baseURL string) (*types.TicketStats, error) {
	endpoint := fmt.Sprintf("%s/tickets/stats", baseURL)
	var stats types.TicketStats
	if err := getJSON(ctx, hc, "get ticket stats", endpoint, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
