package digtrack

import (
	"github.com/digtrack/digtrack-go/internal/expiry"
	"github.com/digtrack/digtrack-go/internal/types"
)

// Public type aliases so SDK consumers can import only the digtrack package.

// Domain entities
type (
	Identity = types.Identity
	Ticket   = types.Ticket
	User     = types.User
)

// Requests
type (
	CreateTicketRequest = types.CreateTicketRequest
	UpdateTicketRequest = types.UpdateTicketRequest
	ListTicketsRequest  = types.ListTicketsRequest
	CreateUserRequest   = types.CreateUserRequest
	UpdateUserRequest   = types.UpdateUserRequest
)

// Responses
type (
	TicketList  = types.TicketList
	TicketStats = types.TicketStats
)

// Expiration classification
type (
	Date           = expiry.Date
	ExpirationView = expiry.View
	Status         = expiry.Status
	Summary        = expiry.Summary
)

const (
	StatusActive       = expiry.StatusActive
	StatusExpiringSoon = expiry.StatusExpiringSoon
	StatusExpired      = expiry.StatusExpired
	StatusUnknown      = expiry.StatusUnknown

	// DefaultExpiringThreshold is the default "expiring soon" window.
	DefaultExpiringThreshold = expiry.DefaultThreshold
)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) { return expiry.ParseDate(s) }

// ExpirationFor suggests the expiration date implied by a submit date and a
// jurisdiction's validity window. The server remains authoritative.
func ExpirationFor(submit Date, state string) Date { return expiry.ExpirationFor(submit, state) }
