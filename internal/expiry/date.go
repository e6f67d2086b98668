package expiry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// layout is the wire format for calendar dates. The backend deals in plain
// dates with no time-of-day component.
const layout = "2006-01-02"

// Date is a calendar date. Unlike time.Time it carries no clock or zone, so
// two Dates compare equal whenever they name the same day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// AddDays returns the date n days after d (n may be negative). Overflow is
// normalized by the time package, so month and year boundaries are handled.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// utcMidnight anchors d to midnight UTC. Day differences are computed
// between two such anchors: every span is then an exact multiple of 24h,
// which local midnights are not on DST transition days.
func (d Date) utcMidnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the whole calendar-day difference between d and now's
// calendar date in now's location. A deadline of "today" is 0, yesterday
// is -1. Clock time within the day never changes the answer.
func (d Date) DaysUntil(now time.Time) int {
	today := DateOf(now).utcMidnight()
	target := d.utcMidnight()
	return int(target.Sub(today) / (24 * time.Hour))
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and, for tolerance with timestamp-typed
// backends, a date with a trailing time component which is discarded.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
