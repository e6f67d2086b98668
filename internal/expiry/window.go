package expiry

import "strings"

// Jurisdiction validity windows for 811 locate tickets, in days from the
// submit date. The backend applies the same table; the client copy exists so
// forms can suggest an expiration date before the ticket is submitted.
var windowDays = map[string]int{
	"VA": 30,
	"MD": 15,
	"DC": 30,
}

// DefaultWindowDays applies to jurisdictions without a specific rule.
const DefaultWindowDays = 30

// WindowDays returns the validity window for a two-letter jurisdiction code.
func WindowDays(state string) int {
	if d, ok := windowDays[strings.ToUpper(state)]; ok {
		return d
	}
	return DefaultWindowDays
}

// ExpirationFor computes the expiration date implied by a submit date and
// jurisdiction. The server remains authoritative; this is a client-side
// suggestion.
func ExpirationFor(submit Date, state string) Date {
	return submit.AddDays(WindowDays(state))
}
