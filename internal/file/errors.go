package file

import "errors"

// Caller-facing failure kinds. Collaborator failures wrap both the kind and
// the underlying error, so errors.Is works on either.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("file not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooLarge        = errors.New("file too large")

	ErrStorageWriteFailed   = errors.New("storage write failed")
	ErrStorageReadFailed    = errors.New("storage read failed")
	ErrStorageDeleteFailed  = errors.New("storage delete failed")
	ErrMetadataWriteFailed  = errors.New("metadata write failed")
	ErrMetadataReadFailed   = errors.New("metadata read failed")
	ErrMetadataDeleteFailed = errors.New("metadata delete failed")
)

// IsHidden reports whether err must be presented as "not found" to the caller.
// Owner mismatches are indistinguishable from missing records.
func IsHidden(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}
