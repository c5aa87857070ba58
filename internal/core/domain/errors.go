package domain

import "errors"

// Sentinel errors shared across services and repositories. The HTTP layer
// maps each one to a fixed status code; messages wrapped around them are
// considered operational and safe to show to clients.
var (
	// ErrNotFound: an id or lookup key did not resolve to a record.
	ErrNotFound = errors.New("not found")

	// ErrValidation: the input shape, range or enumeration check failed.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate: a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate value")

	// ErrInvalidID: the supplied identifier cannot be parsed.
	ErrInvalidID = errors.New("invalid id")

	// ErrUnauthorized: missing, invalid or expired credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden: valid credential, insufficient role.
	ErrForbidden = errors.New("forbidden")
)

// Operational reports whether err is an expected, deliberately raised
// failure whose message is safe to surface to a client.
func Operational(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound, ErrValidation, ErrDuplicate,
		ErrInvalidID, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
