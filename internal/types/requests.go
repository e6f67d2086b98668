package types

import "github.com/digtrack/digtrack-go/internal/expiry"

// ------------------------------
// Request Types
// ------------------------------

// MagicLinkRequest asks the identity service to email a login link.
type MagicLinkRequest struct {
	Email string `json:"email"`
}

// CreateTicketRequest holds parameters for a new ticket. ExpirationDate may
// be omitted; the server derives it from SubmitDate and State.
type CreateTicketRequest struct {
	TicketNumber     string       `json:"ticket_number"`
	JobName          string       `json:"job_name"`
	Address          string       `json:"address,omitempty"`
	State            string       `json:"state"`
	SubmitDate       expiry.Date  `json:"submit_date"`
	ExpirationDate   *expiry.Date `json:"expiration_date,omitempty"`
	UtilityResponses string       `json:"utility_responses,omitempty"`
	AssignedPM       string       `json:"assigned_pm,omitempty"`
	Notes            string       `json:"notes,omitempty"`
}

// UpdateTicketRequest holds partial field replacements. Nil fields are left
// unchanged. TicketNumber never travels on the wire: the number is immutable
// and the client rejects any attempt to change it before dispatch.
type UpdateTicketRequest struct {
	TicketNumber     *string      `json:"-"`
	JobName          *string      `json:"job_name,omitempty"`
	Address          *string      `json:"address,omitempty"`
	State            *string      `json:"state,omitempty"`
	SubmitDate       *expiry.Date `json:"submit_date,omitempty"`
	ExpirationDate   *expiry.Date `json:"expiration_date,omitempty"`
	UtilityResponses *string      `json:"utility_responses,omitempty"`
	AssignedPM       *string      `json:"assigned_pm,omitempty"`
	Notes            *string      `json:"notes,omitempty"`
}

// RenewTicketRequest carries the replacement expiration date for the renew
// endpoint. A past date is legitimate (backdated correction).
type RenewTicketRequest struct {
	NewExpirationDate expiry.Date `json:"new_expiration_date"`
}

// ListTicketsRequest names the filter, sort and paging parameters of a list
// query. The zero value lists everything with server defaults.
type ListTicketsRequest struct {
	Status     string
	State      string
	AssignedPM string
	Search     string
	SortBy     string
	SortOrder  string
	Skip       int
	Limit      int
}

// CreateUserRequest holds parameters for a new managed account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest holds partial account updates.
type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
