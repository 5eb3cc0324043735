package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the caller is not allowed to act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// ValidationError reports rejected user input. It is recovered locally and
// never reaches the record store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Field + ": " + e.Reason
}

// Throttle reasons distinguish which limit rejected a request.
const (
	ThrottleCooldown   = "cooldown"
	ThrottleDailyQuota = "daily_quota"
)

// ThrottleError reports a creation attempt rejected by the cooldown or the
// daily quota. Both map to the same user-facing treatment regardless of
// whether the pre-flight check or the store fired.
type ThrottleError struct {
	Reason string
}

func (e *ThrottleError) Error() string {
	return "throttled: " + e.Reason
}

// UserSafeMessage maps internal errors to messages safe to show to callers.
func UserSafeMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	var terr *ThrottleError
	if errors.As(err, &terr) {
		switch terr.Reason {
		case ThrottleCooldown:
			return "Please wait a few seconds before adding another task."
		case ThrottleDailyQuota:
			return "You have reached the daily task limit, come back tomorrow."
		}
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to perform this action."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	}
	return "An unexpected error occurred, please try again."
}
