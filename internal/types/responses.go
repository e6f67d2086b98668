package types

// ------------------------------
// Response Types
// ------------------------------

// VerifyResponse is the identity service's answer to a successful magic-link
// verification: the bearer credential plus the authenticated identity.
type VerifyResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	User        *Identity `json:"user"`
}

// MagicLinkResponse acknowledges an issuance request.
type MagicLinkResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// TicketList wraps the list endpoint response.
type TicketList struct {
	Tickets []Ticket `json:"tickets"`
	Total   int      `json:"total"`
	Skip    int      `json:"skip"`
	Limit   int      `json:"limit"`
}

// TicketStats is the aggregate dashboard payload.
type TicketStats struct {
	TotalTickets        int            `json:"total_tickets"`
	ActiveTickets       int            `json:"active_tickets"`
	ExpiringSoonTickets int            `json:"expiring_soon_tickets"`
	ExpiredTickets      int            `json:"expired_tickets"`
	TicketsByState      map[string]int `json:"tickets_by_state"`
	ExpiringInNext7Days int            `json:"expiring_in_next_7_days"`
}
