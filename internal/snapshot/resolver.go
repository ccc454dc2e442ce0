// Package snapshot materializes a set of posts and all their related media
// into a self-contained, serializable Snapshot. This file implements link
// resolution for internal cross-post hyperlinks. The resolver is explicit,
// request-scoped state passed down the render call chain; there is no
// process-global hook to arm or clear.
package snapshot

import (
	"context"

	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/blocks"
)

// Resolver returns a link resolver bound to this snapshot: a page id
// present in the snapshot's post map resolves from the already-computed
// URL map without touching the store; any other id is delegated to the
// fallback (which may be nil, in which case the link is unresolved).
func (s *Snapshot) Resolver(fallback blocks.LinkResolver) blocks.LinkResolver {
	return blocks.ResolverFunc(func(id int64) (blocks.Link, bool) {
		if rec, ok := s.PostByID[id]; ok {
			return blocks.Link{URL: s.PageURLByPostID[id], Title: rec.Title()}, true
		}
		if fallback == nil {
			return blocks.Link{}, false
		}
		return fallback.ResolvePage(id)
	})
}

// LiveResolver resolves internal links by querying the store. It is the
// fallback behind a snapshot resolver, used when a body links to a post
// outside the current snapshot. The context is captured at construction
// because resolution happens deep inside the render chain.
type LiveResolver struct {
	ctx context.Context
	db  *gorm.DB
}

// NewLiveResolver builds a store-backed resolver for one request.
func NewLiveResolver(ctx context.Context, db *gorm.DB) LiveResolver {
	return LiveResolver{ctx: ctx, db: db}
}

// ResolvePage implements blocks.LinkResolver.
func (r LiveResolver) ResolvePage(id int64) (blocks.Link, bool) {
	if r.db == nil {
		return blocks.Link{}, false
	}
	var row struct {
		Title    string
		Slug     string
		BlogSlug string
	}
	err := r.db.WithContext(r.ctx).
		Table("posts").
		Select("posts.title AS title, posts.slug AS slug, blogs.slug AS blog_slug").
		Joins("JOIN blogs ON blogs.id = posts.blog_id").
		Where("posts.id = ? AND posts.deleted_at IS NULL", id).
		Scan(&row).Error
	if err != nil || row.Slug == "" {
		return blocks.Link{}, false
	}
	return blocks.Link{URL: "/" + row.BlogSlug + "/" + row.Slug + "/", Title: row.Title}, true
}
