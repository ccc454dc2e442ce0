// Package pagerepo provides the request-scoped, read-only repository
// variants that rendering code consumes. This file implements the Feed
// repository: every published post of a blog, with the absolute URL and
// podcast data syndication needs. Feed libraries iterate a post collection
// several times on the live path; here the collection is handed out once
// and the repository marks itself used, so re-iteration can never trigger
// queries or yield a different episode list.
package pagerepo

import (
	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

// Feed exposes exactly the data the feed generators need.
type Feed struct {
	snap *snapshot.Snapshot
	used bool
}

// NewFeed wraps a full-blog snapshot.
func NewFeed(snap *snapshot.Snapshot) (*Feed, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &Feed{snap: snap}, nil
}

// EncodeFeed flattens a Feed repository for the cache store.
func EncodeFeed(f *Feed) ([]byte, error) {
	return snapshot.Marshal(snapshot.Encode(f.snap))
}

// DecodeFeed reconstructs a Feed repository from a cache payload.
func DecodeFeed(data []byte) (*Feed, error) {
	p, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.Decode(p)
	if err != nil {
		return nil, err
	}
	return NewFeed(snap)
}

// Posts returns the full post collection, newest first, exactly once.
// After the first call the repository is used and returns nothing.
func (f *Feed) Posts() []snapshot.Record {
	if f.used {
		return nil
	}
	f.used = true
	return f.snap.Posts()
}

// Used reports whether the post collection has been consumed.
func (f *Feed) Used() bool { return f.used }

// Blog returns the syndicated blog.
func (f *Feed) Blog() domain.Blog { return f.snap.Blog }

// Site returns the owning site.
func (f *Feed) Site() domain.Site { return f.snap.Site }

// AbsoluteURL returns a post's absolute page URL.
func (f *Feed) AbsoluteURL(postID int64) string {
	return f.snap.AbsolutePageURLByPostID[postID]
}

// OwnerName returns a post's author display name.
func (f *Feed) OwnerName(postID int64) string { return f.snap.OwnerNameByPostID[postID] }

// Cover returns a post's cover image URL and alt text.
func (f *Feed) Cover(postID int64) (url, alt string) {
	return f.snap.CoverURLByPostID[postID], f.snap.CoverAltByPostID[postID]
}

// EpisodeAudio returns the attached podcast audio of an episode.
func (f *Feed) EpisodeAudio(postID int64) (domain.Audio, bool) {
	id, ok := f.snap.EpisodeAudioByPostID[postID]
	if !ok {
		return domain.Audio{}, false
	}
	a, ok := f.snap.AudioByID[id]
	return a, ok
}

// Transcript returns the transcript of an episode's audio, keyed through
// the episode's attached audio id.
func (f *Feed) Transcript(postID int64) (domain.Transcript, bool) {
	audioID, ok := f.snap.EpisodeAudioByPostID[postID]
	if !ok {
		return domain.Transcript{}, false
	}
	t, ok := f.snap.TranscriptByAudioID[audioID]
	return t, ok
}
