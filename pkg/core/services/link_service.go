package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shortlyhq/shortly/pkg/core/domain"
	"github.com/shortlyhq/shortly/pkg/ports"
)

// maxCodeAttempts bounds how many freshly generated codes Shorten will try
// before giving up with domain.ErrCodeSpaceExhausted.
const maxCodeAttempts = 5

type LinkService struct {
	repo     ports.LinkRepository
	generate func(length int) (string, error)
}

func NewLinkService(repo ports.LinkRepository) *LinkService {
	return &LinkService{
		repo: repo,
		generate: func(length int) (string, error) {
			return GenerateCode(Alphabet, length)
		},
	}
}

// NewLinkServiceWithGenerator is like NewLinkService but with a custom code
// generator. Used by tests to force collisions.
func NewLinkServiceWithGenerator(repo ports.LinkRepository, generate func(length int) (string, error)) *LinkService {
	return &LinkService{repo: repo, generate: generate}
}

// Shorten stores originalURL under a freshly generated code. A duplicate code
// is an expected outcome of random generation, so the insert is retried with
// a new code up to maxCodeAttempts times before the attempt is reported as
// code-space exhaustion.
func (s *LinkService) Shorten(ctx context.Context, originalURL string, ownerID *string) (*domain.Link, error) {
	if originalURL == "" {
		return nil, errors.New("original URL is required")
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.generate(CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}

		now := time.Now()
		link := &domain.Link{
			OriginalURL: originalURL,
			ShortCode:   code,
			OwnerID:     ownerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = s.repo.Insert(ctx, link)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, domain.ErrDuplicateCode) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w after %d attempts", domain.ErrCodeSpaceExhausted, maxCodeAttempts)
}

// Resolve returns the active link for code and accounts the click. A
// soft-deleted link is indistinguishable from one that never existed. The
// increment runs before the caller redirects, but an increment failure is
// only logged: it must never turn a working redirect into an error.
func (s *LinkService) Resolve(ctx context.Context, code string) (*domain.Link, error) {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementClicks(ctx, code); err != nil {
		log.Printf("failed to count click for %s: %v", code, err)
	} else {
		link.ClickCount++
	}

	return link, nil
}

// ListForOwner returns the owner's active links, most recently updated first.
func (s *LinkService) ListForOwner(ctx context.Context, ownerID string) ([]domain.Link, error) {
	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []domain.Link{}
	}
	return links, nil
}

// UpdateOriginalURL points an existing code at a new destination. Only the
// link's owner may do this; anonymous links have no owner and can never be
// updated.
func (s *LinkService) UpdateOriginalURL(ctx context.Context, code, originalURL string, ownerID *string) (*domain.Link, error) {
	if originalURL == "" {
		return nil, errors.New("original URL is required")
	}

	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !link.OwnedBy(ownerID) {
		return nil, domain.ErrForbidden
	}

	return s.repo.UpdateOriginalURL(ctx, code, originalURL)
}

// Delete soft-deletes the link. The row stays in storage so the code is never
// reissued, but the link becomes invisible: a second Delete, like any other
// operation on it, reports domain.ErrNotFound.
func (s *LinkService) Delete(ctx context.Context, code string, ownerID *string) error {
	link, err := s.repo.GetByShortCode(ctx, code)
	if err != nil {
		return err
	}
	if !link.OwnedBy(ownerID) {
		return domain.ErrForbidden
	}

	return s.repo.SoftDelete(ctx, code)
}

// Ensure interface compliance
var _ ports.LinkService = (*LinkService)(nil)
