// Package expiry derives a ticket's urgency classification from its
// expiration date. Classification is pure: the reference time is always an
// argument, so a whole batch of tickets can be evaluated against one instant
// and the result is reproducible in tests.
package expiry

import "time"

// Status is the temporal classification of a ticket.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	// StatusUnknown marks tickets with no tracked deadline. An untracked
	// deadline is never surfaced as urgent.
	StatusUnknown Status = "unknown"
)

// DefaultThreshold is the day count at or under which an unexpired ticket is
// considered expiring soon.
const DefaultThreshold = 5

// View is the derived expiration state of a single ticket. It is rebuilt on
// every read and never stored.
type View struct {
	Status Status `json:"status"`
	// DaysUntil is nil when no expiration date is tracked. Negative once the
	// date has passed.
	DaysUntil *int `json:"days_until"`
	// UrgencyRank orders statuses for display: higher is more urgent.
	UrgencyRank int `json:"urgency_rank"`
}

var ranks = map[Status]int{
	StatusExpired:      3,
	StatusExpiringSoon: 2,
	StatusActive:       1,
	StatusUnknown:      0,
}

// Classify maps an expiration date and a reference instant to a View.
// d == nil means no deadline is tracked. The threshold is inclusive at both
// ends: days_until of 0 and of threshold both classify as expiring_soon.
func Classify(d *Date, now time.Time, threshold int) View {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	if d == nil || d.IsZero() {
		return View{Status: StatusUnknown, UrgencyRank: ranks[StatusUnknown]}
	}
	days := d.DaysUntil(now)
	var st Status
	switch {
	case days < 0:
		st = StatusExpired
	case days <= threshold:
		st = StatusExpiringSoon
	default:
		st = StatusActive
	}
	return View{Status: st, DaysUntil: &days, UrgencyRank: ranks[st]}
}

// Summary holds per-status totals for a set of tickets.
type Summary struct {
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
	Unknown      int `json:"unknown"`
}

// Summarize classifies every date independently against the same instant and
// tallies the statuses. Counts are always re-derived from the full set;
// incremental updates drift when a ticket crosses a threshold between
// evaluations.
func Summarize(dates []*Date, now time.Time, threshold int) Summary {
	var s Summary
	for _, d := range dates {
		switch Classify(d, now, threshold).Status {
		case StatusActive:
			s.Active++
		case StatusExpiringSoon:
			s.ExpiringSoon++
		case StatusExpired:
			s.Expired++
		default:
			s.Unknown++
		}
	}
	return s
}
