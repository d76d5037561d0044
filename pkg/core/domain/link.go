package domain

import "time"

// Link represents a shortened URL
type Link struct {
	ID          int64      `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	OwnerID     *string    `json:"owner_id,omitempty"` // nil for anonymously created links
	ClickCount  int64      `json:"click_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the link has been soft-deleted. Deleted links stay
// in storage so their code is never reissued, but they are invisible to
// resolution and listing.
func (l *Link) Deleted() bool {
	return l.DeletedAt != nil
}

// OwnedBy reports whether ownerID may mutate the link. Both sides must carry
// a concrete identity: an anonymous caller can never claim a link, and an
// anonymously created link can never be claimed, not even by another
// anonymous caller.
func (l *Link) OwnedBy(ownerID *string) bool {
	return ownerID != nil && l.OwnerID != nil && *l.OwnerID == *ownerID
}
