package news

import "time"

// Article is a news post published by a platform user. Articles are
// author-owned: only the author, a site admin, or an admin of the store
// the article is attached to may modify them.
type Article struct {
	ID           string
	AuthorUserID string
	StoreID      string
	Title        string
	Body         string
	PublishedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthorID identifies the owning author.
func (a *Article) AuthorID() string { return a.AuthorUserID }

// OwningStoreID identifies the store the article is attached to, empty
// for platform-wide news.
func (a *Article) OwningStoreID() string { return a.StoreID }

// Published reports whether the article is publicly visible.
func (a *Article) Published() bool {
	return a.PublishedAt != nil && !a.PublishedAt.After(time.Now())
}
