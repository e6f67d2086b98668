package types

import (
	"time"

	"github.com/digtrack/digtrack-go/internal/expiry"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// Identity is the authenticated user as reported by the identity service.
// It is replaced wholesale on re-auth, never partially mutated.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	// Role is one of "viewer", "editor", "admin". The client passes it
	// through as an opaque capability flag; enforcement is server-side.
	Role string `json:"role"`
}

// Ticket is an 811 utility-locate ticket. The persistence service owns it;
// the client holds a cached, possibly stale copy per query.
type Ticket struct {
	ID           string      `json:"id"`
	TicketNumber string      `json:"ticket_number"` // immutable once created
	JobName      string      `json:"job_name"`
	Address      string      `json:"address,omitempty"`
	State        string      `json:"state"` // two-letter jurisdiction code
	SubmitDate   expiry.Date `json:"submit_date"`
	// ExpirationDate is nil when no deadline is tracked for the ticket.
	ExpirationDate   *expiry.Date `json:"expiration_date"`
	UtilityResponses string       `json:"utility_responses,omitempty"`
	AssignedPM       string       `json:"assigned_pm,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	CreatedBy        string       `json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	// Expiration is derived client-side on every read and never sent on
	// the wire.
	Expiration expiry.View `json:"-"`
}

// User is a managed account, visible through the admin user endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
