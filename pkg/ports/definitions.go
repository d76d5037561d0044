package ports

import (
	"context"

	"github.com/shortlyhq/shortly/pkg/core/domain"
)

// LinkRepository defines storage operations for links.
//
// The repository is the single place where short_code uniqueness is enforced
// (a unique index that covers soft-deleted rows as well, so codes are never
// reissued). Insert returns domain.ErrDuplicateCode when the index rejects a
// row. Lookups and mutations only see active rows; a soft-deleted link
// reports domain.ErrNotFound everywhere except Dump.
type LinkRepository interface {
	Insert(ctx context.Context, link *domain.Link) error
	GetByShortCode(ctx context.Context, code string) (*domain.Link, error)

	// ListByOwner returns the owner's active links, most recently updated
	// first. No matches is an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error)

	// IncrementClicks bumps the counter with an atomic SQL update so that
	// concurrent increments never lose updates.
	IncrementClicks(ctx context.Context, code string) error

	UpdateOriginalURL(ctx context.Context, code, originalURL string) (*domain.Link, error)
	SoftDelete(ctx context.Context, code string) error

	Dump(ctx context.Context) ([]domain.Link, error) // every row, deleted included
}

// LinkService defines the business logic operations. ownerID is the
// already-authenticated caller identity; nil means anonymous.
type LinkService interface {
	Shorten(ctx context.Context, originalURL string, ownerID *string) (*domain.Link, error)
	Resolve(ctx context.Context, code string) (*domain.Link, error)
	ListForOwner(ctx context.Context, ownerID string) ([]domain.Link, error)
	UpdateOriginalURL(ctx context.Context, code, originalURL string, ownerID *string) (*domain.Link, error)
	Delete(ctx context.Context, code string, ownerID *string) error
}
