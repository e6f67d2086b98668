package digtrack

import (
	"errors"

	"github.com/digtrack/digtrack-go/internal/apierr"
)

// ErrNotAuthenticated is returned when a mutating operation is attempted
// without an authenticated session. The request never reaches the service.
var ErrNotAuthenticated = errors.New("not authenticated")

// IsValidation reports whether err is a malformed-input rejection.
func IsValidation(err error) bool { return apierr.IsKind(err, apierr.KindValidation) }

// IsConflict reports whether err is a duplicate-unique-field rejection,
// e.g. a ticket number that already exists. Callers should re-prompt rather
// than retry blindly.
func IsConflict(err error) bool { return apierr.IsKind(err, apierr.KindConflict) }

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool { return apierr.IsKind(err, apierr.KindNotFound) }

// IsAuth reports whether err is an authentication failure: expired, used or
// malformed token, or a rejected credential.
func IsAuth(err error) bool { return apierr.IsKind(err, apierr.KindAuth) }

// IsRecoverable reports whether err is a transient service failure that a
// caller may safely retry for read operations.
func IsRecoverable(err error) bool { return apierr.IsRecoverable(err) }
