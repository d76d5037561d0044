package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shortlyhq/shortly/pkg/core/domain"
)

// memRepo is an in-memory LinkRepository for service tests. The real unique
// index is mimicked by rejecting duplicate codes across all rows, deleted
// ones included.
type memRepo struct {
	links  map[string]*domain.Link
	nextID int64
	incErr error // forced IncrementClicks failure
}

func newMemRepo() *memRepo {
	return &memRepo{links: make(map[string]*domain.Link)}
}

func (r *memRepo) Insert(ctx context.Context, link *domain.Link) error {
	if _, exists := r.links[link.ShortCode]; exists {
		return domain.ErrDuplicateCode
	}
	r.nextID++
	link.ID = r.nextID
	cp := *link
	r.links[link.ShortCode] = &cp
	return nil
}

func (r *memRepo) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	l, ok := r.links[code]
	if !ok || l.Deleted() {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *memRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error) {
	var out []domain.Link
	for _, l := range r.links {
		if l.Deleted() || l.OwnerID == nil || *l.OwnerID != ownerID {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memRepo) IncrementClicks(ctx context.Context, code string) error {
	if r.incErr != nil {
		return r.incErr
	}
	l, ok := r.links[code]
	if !ok || l.Deleted() {
		return domain.ErrNotFound
	}
	l.ClickCount++
	return nil
}

func (r *memRepo) UpdateOriginalURL(ctx context.Context, code, originalURL string) (*domain.Link, error) {
	l, ok := r.links[code]
	if !ok || l.Deleted() {
		return nil, domain.ErrNotFound
	}
	l.OriginalURL = originalURL
	l.UpdatedAt = time.Now()
	cp := *l
	return &cp, nil
}

func (r *memRepo) SoftDelete(ctx context.Context, code string) error {
	l, ok := r.links[code]
	if !ok || l.Deleted() {
		return domain.ErrNotFound
	}
	now := time.Now()
	l.DeletedAt = &now
	return nil
}

func (r *memRepo) Dump(ctx context.Context) ([]domain.Link, error) {
	var out []domain.Link
	for _, l := range r.links {
		out = append(out, *l)
	}
	return out, nil
}

// queueGenerator returns the given codes in order, used to force collisions.
func queueGenerator(codes ...string) func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		if i >= len(codes) {
			return "", errors.New("generator exhausted")
		}
		c := codes[i]
		i++
		return c, nil
	}
}

func strPtr(s string) *string { return &s }

func TestShortenAndResolve(t *testing.T) {
	repo := newMemRepo()
	svc := NewLinkService(repo)
	ctx := context.Background()

	link, err := svc.Shorten(ctx, "https://example.com", nil)
	if err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}
	if len(link.ShortCode) != CodeLength {
		t.Errorf("expected code of length %d, got %q", CodeLength, link.ShortCode)
	}
	for _, c := range link.ShortCode {
		if !strings.ContainsRune(Alphabet, c) {
			t.Errorf("code %q contains %q outside the alphabet", link.ShortCode, c)
		}
	}

	resolved, err := svc.Resolve(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.OriginalURL != "https://example.com" {
		t.Errorf("expected original URL back, got %q", resolved.OriginalURL)
	}
	if resolved.ClickCount != 1 {
		t.Errorf("expected click count 1, got %d", resolved.ClickCount)
	}
}

func TestShortenRejectsEmptyURL(t *testing.T) {
	svc := NewLinkService(newMemRepo())
	if _, err := svc.Shorten(context.Background(), "", nil); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestShortenRetriesOnDuplicate(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()

	// abcd12 goes in first so the generator's first answer collides.
	seeded := NewLinkServiceWithGenerator(repo, queueGenerator("abcd12"))
	if _, err := seeded.Shorten(ctx, "https://first.example", nil); err != nil {
		t.Fatalf("seed Shorten failed: %v", err)
	}

	svc := NewLinkServiceWithGenerator(repo, queueGenerator("abcd12", "def456"))
	link, err := svc.Shorten(ctx, "https://second.example", nil)
	if err != nil {
		t.Fatalf("Shorten should recover from a duplicate: %v", err)
	}
	if link.ShortCode != "def456" {
		t.Errorf("expected retry to land on def456, got %q", link.ShortCode)
	}
}

func TestShortenExhaustsRetries(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()

	seeded := NewLinkServiceWithGenerator(repo, queueGenerator("abcd12"))
	if _, err := seeded.Shorten(ctx, "https://first.example", nil); err != nil {
		t.Fatalf("seed Shorten failed: %v", err)
	}

	// Every attempt collides.
	svc := NewLinkServiceWithGenerator(repo, func(int) (string, error) { return "abcd12", nil })
	_, err := svc.Shorten(ctx, "https://second.example", nil)
	if !errors.Is(err, domain.ErrCodeSpaceExhausted) {
		t.Errorf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	svc := NewLinkService(newMemRepo())
	_, err := svc.Resolve(context.Background(), "nope00")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveSurvivesFailedIncrement(t *testing.T) {
	repo := newMemRepo()
	svc := NewLinkService(repo)
	ctx := context.Background()

	link, err := svc.Shorten(ctx, "https://example.com", nil)
	if err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}

	repo.incErr = errors.New("storage hiccup")
	resolved, err := svc.Resolve(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("a failed increment must not fail the redirect: %v", err)
	}
	if resolved.OriginalURL != "https://example.com" {
		t.Errorf("expected original URL back, got %q", resolved.OriginalURL)
	}
}

func TestOwnershipChecks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		linkOwner *string
		caller    *string
		wantErr   error
	}{
		{"owner matches", strPtr("ownerA"), strPtr("ownerA"), nil},
		{"different owner", strPtr("ownerB"), strPtr("ownerA"), domain.ErrForbidden},
		{"anonymous link, identified caller", nil, strPtr("ownerA"), domain.ErrForbidden},
		{"owned link, anonymous caller", strPtr("ownerA"), nil, domain.ErrForbidden},
		{"anonymous link, anonymous caller", nil, nil, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			svc := NewLinkService(repo)

			link, err := svc.Shorten(ctx, "https://example.com", tt.linkOwner)
			if err != nil {
				t.Fatalf("Shorten failed: %v", err)
			}

			_, err = svc.UpdateOriginalURL(ctx, link.ShortCode, "https://new.example", tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("update: expected %v, got %v", tt.wantErr, err)
			}

			err = svc.Delete(ctx, link.ShortCode, tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("delete: expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDeleteHidesLink(t *testing.T) {
	repo := newMemRepo()
	svc := NewLinkService(repo)
	ctx := context.Background()
	owner := strPtr("ownerA")

	link, err := svc.Shorten(ctx, "https://example.com", owner)
	if err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}

	if err := svc.Delete(ctx, link.ShortCode, owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := svc.Resolve(ctx, link.ShortCode); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("resolve after delete: expected ErrNotFound, got %v", err)
	}

	// Deleting twice reports not found: the record is invisible now.
	if err := svc.Delete(ctx, link.ShortCode, owner); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListForOwner(t *testing.T) {
	repo := newMemRepo()
	svc := NewLinkService(repo)
	ctx := context.Background()
	owner := strPtr("ownerA")

	first, err := svc.Shorten(ctx, "https://one.example", owner)
	if err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}
	second, err := svc.Shorten(ctx, "https://two.example", owner)
	if err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}
	if _, err := svc.Shorten(ctx, "https://other.example", strPtr("ownerB")); err != nil {
		t.Fatalf("Shorten failed: %v", err)
	}

	if err := svc.Delete(ctx, second.ShortCode, owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	links, err := svc.ListForOwner(ctx, *owner)
	if err != nil {
		t.Fatalf("ListForOwner failed: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 active link, got %d", len(links))
	}
	if links[0].ShortCode != first.ShortCode {
		t.Errorf("expected %q, got %q", first.ShortCode, links[0].ShortCode)
	}
}

func TestListForOwnerEmpty(t *testing.T) {
	svc := NewLinkService(newMemRepo())

	links, err := svc.ListForOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListForOwner failed: %v", err)
	}
	if links == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(links) != 0 {
		t.Errorf("expected no links, got %d", len(links))
	}
}
