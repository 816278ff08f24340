package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login. Deliberately does
	// not say which part of the credential pair was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when the bearer token is absent or invalid.
	ErrUnauthenticated = errors.New("invalid or missing token")
	// ErrForbidden is returned when the caller's role is not in the allowed set.
	ErrForbidden = errors.New("insufficient role")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrResetRateLimited is returned once the reset-attempt ceiling is hit.
	ErrResetRateLimited = errors.New("maximum password reset attempts reached, try again after 24 hours")
	// ErrResetInvalid is returned for an unknown, consumed or expired reset token.
	ErrResetInvalid = errors.New("invalid or expired reset token")
	// ErrInvalidRole is returned when a role value is outside the enum.
	ErrInvalidRole = errors.New("invalid role")
	// ErrLastAdmin is returned when a role change would leave zero admins.
	ErrLastAdmin = errors.New("cannot change role of the last admin")
	// ErrAdminProtected is returned when deactivating an admin account.
	ErrAdminProtected = errors.New("cannot deactivate admin accounts")
	// ErrMissingEmail is returned when an OAuth profile carries no email.
	ErrMissingEmail = errors.New("provider did not supply an email")
	// ErrUpstream is returned when mail transport or an OAuth provider fails.
	ErrUpstream = errors.New("upstream service failure")
)

// Status maps a domain error to the HTTP status it is served with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrLastAdmin), errors.Is(err, ErrAdminProtected):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrResetRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrResetInvalid), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrMissingEmail):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
