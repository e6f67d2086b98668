// Package apierr classifies failures surfaced by the ticket service so
// callers can branch on kind (re-prompt on conflict, re-auth on rejection)
// and retry policy can distinguish transient from permanent errors.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is the caller-facing error category.
type Kind int

const (
	// KindValidation marks malformed input, caught client-side before
	// dispatch or rejected by the server with a 4xx validation status.
	KindValidation Kind = iota

	// KindConflict marks a duplicate unique field (ticket number taken).
	KindConflict

	// KindNotFound marks a missing resource.
	KindNotFound

	// KindAuth marks an expired/used/invalid token or rejected credential.
	KindAuth

	// KindService marks transport failures and unexpected backend errors.
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindService:
		return "service"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error carries the classified failure plus the server-supplied reason.
type Error struct {
	Kind       Kind
	StatusCode int    // 0 for errors raised before or below HTTP
	Detail     string // human-readable reason, server's wording when present
	Underlying error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Underlying)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Underlying }

// Recoverable reports whether a retry could plausibly succeed. Only
// transient transport and server-side failures qualify; every 4xx except
// 408/429 is permanent.
func (e *Error) Recoverable() bool {
	if e.Kind != KindService {
		return false
	}
	switch {
	case e.StatusCode == 0: // network-level failure
		return true
	case e.StatusCode == 408 || e.StatusCode == 429:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// New builds a client-side error with no HTTP context.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Validation is shorthand for a client-side precondition failure.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// Network wraps a transport-level failure for operation op.
func Network(op string, err error) *Error {
	return &Error{
		Kind:       KindService,
		Detail:     fmt.Sprintf("%s: request failed", op),
		Underlying: err,
	}
}

// detailBody is the service's error envelope.
type detailBody struct {
	Detail string `json:"detail"`
}

// FromResponse maps a non-success HTTP response to a classified error. The
// body, when it carries the service's {"detail": ...} envelope, supplies the
// human-readable reason verbatim.
func FromResponse(op string, status int, body []byte) *Error {
	detail := ""
	var db detailBody
	if err := json.Unmarshal(body, &db); err == nil {
		detail = strings.TrimSpace(db.Detail)
	}
	if detail == "" {
		detail = fmt.Sprintf("%s: status %d", op, status)
	}

	var kind Kind
	switch {
	case status == 404:
		kind = KindNotFound
	case status == 409:
		kind = KindConflict
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 400 || status == 422:
		kind = KindValidation
	case status == 408 || status == 429:
		kind = KindService
	default:
		kind = KindService
	}
	return &Error{Kind: kind, StatusCode: status, Detail: detail}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsRecoverable reports whether err is a classified error worth retrying.
// Unclassified errors are treated as permanent.
func IsRecoverable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Recoverable()
}
