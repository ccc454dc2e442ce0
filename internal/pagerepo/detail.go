// Package pagerepo provides the request-scoped, read-only repository
// variants that rendering code consumes. This file implements the Detail
// repository: the single-post page view. Unlike Index and Feed, a Detail
// repository is not single-use; detail templates read the same post from
// several partials.
package pagerepo

import (
	"github.com/dkarlsen/go-blog-cache/internal/blocks"
	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

// Detail exposes exactly the data the single-post template needs.
type Detail struct {
	snap   *snapshot.Snapshot
	postID int64
}

// NewDetail wraps a single-post snapshot. The snapshot must contain
// exactly one post; anything else is a corrupt input.
func NewDetail(snap *snapshot.Snapshot) (*Detail, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if len(snap.PostIDs) != 1 {
		return nil, snapshot.ErrSnapshotCorrupt
	}
	return &Detail{snap: snap, postID: snap.PostIDs[0]}, nil
}

// DecodeDetail reconstructs a Detail repository from a cache payload.
func DecodeDetail(data []byte) (*Detail, error) {
	p, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.Decode(p)
	if err != nil {
		return nil, err
	}
	return NewDetail(snap)
}

// EncodeDetail flattens a Detail repository for the cache store.
func EncodeDetail(d *Detail) ([]byte, error) {
	return snapshot.Marshal(snapshot.Encode(d.snap))
}

// Post returns the post record.
func (d *Detail) Post() snapshot.Record { return d.snap.PostByID[d.postID] }

// Blog returns the owning blog.
func (d *Detail) Blog() domain.Blog { return d.snap.Blog }

// Theme returns the template theme directory for this page.
func (d *Detail) Theme() string { return d.snap.TemplateBaseDir }

// CommentsEnabled reports whether the comment widget should load.
func (d *Detail) CommentsEnabled() bool { return d.Post().CommentsEnabled() }

// HasAudio reports whether the page needs the audio player widget.
func (d *Detail) HasAudio() bool { return d.snap.HasAudioByPostID[d.postID] }

// PageURL returns the post's site-relative URL.
func (d *Detail) PageURL() string { return d.snap.PageURLByPostID[d.postID] }

// AbsolutePageURL returns the post's absolute URL.
func (d *Detail) AbsolutePageURL() string { return d.snap.AbsolutePageURLByPostID[d.postID] }

// OwnerName returns the author display name.
func (d *Detail) OwnerName() string { return d.snap.OwnerNameByPostID[d.postID] }

// Cover returns the cover image URL and alt text ("" when coverless).
func (d *Detail) Cover() (url, alt string) {
	return d.snap.CoverURLByPostID[d.postID], d.snap.CoverAltByPostID[d.postID]
}

// NavLinks returns the site's root navigation.
func (d *Detail) NavLinks() []snapshot.NavLink { return d.snap.RootNavLinks }

// BodyHTML renders the post body. Internal links resolve from the snapshot
// first; ids outside the snapshot go to the fallback resolver.
func (d *Detail) BodyHTML(fallback blocks.LinkResolver) (string, error) {
	return blocks.Render(d.Post().Body(), d.snap, d.snap.Resolver(fallback))
}
