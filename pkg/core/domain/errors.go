package domain

import "errors"

var (
	// ErrNotFound means no active link matches the requested code.
	// Soft-deleted links report this too.
	ErrNotFound = errors.New("link not found")

	// ErrForbidden means the caller's identity does not own the link.
	ErrForbidden = errors.New("not the owner of this link")

	// ErrDuplicateCode is returned by the store when an insert hits the
	// unique index on short_code. The lifecycle service retries it and it
	// never reaches the transport boundary.
	ErrDuplicateCode = errors.New("short code already exists")

	// ErrCodeSpaceExhausted means every generated code within the bounded
	// retries collided. This is an operational condition, not a caller error.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
)
