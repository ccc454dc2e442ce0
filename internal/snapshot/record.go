// Package snapshot materializes a set of posts and all their related media
// into a self-contained, serializable Snapshot. This file defines the Record
// interface: the read-only post shape shared by live query results and
// rehydrated cache stand-ins, so downstream rendering code cannot tell the
// two apart.
package snapshot

import (
	"time"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
)

// Record is the read-only view of a post that repositories and renderers
// consume. Both implementations are immutable after construction.
type Record interface {
	ID() int64
	Title() string
	Slug() string
	Body() string
	VisibleDate() time.Time
	CommentsEnabled() bool
	// EpisodeAudioID returns the attached podcast audio id, if any.
	EpisodeAudioID() (int64, bool)
	Explicit() bool
	Keywords() string
	Blocked() bool
}

// livePost wraps a post row loaded from the store.
type livePost struct {
	p domain.Post
}

func (l livePost) ID() int64              { return l.p.ID }
func (l livePost) Title() string          { return l.p.Title }
func (l livePost) Slug() string           { return l.p.Slug }
func (l livePost) Body() string           { return l.p.Body }
func (l livePost) VisibleDate() time.Time { return l.p.VisibleDate }
func (l livePost) CommentsEnabled() bool  { return l.p.CommentsEnabled }
func (l livePost) Explicit() bool         { return l.p.Explicit }
func (l livePost) Keywords() string       { return l.p.Keywords }
func (l livePost) Blocked() bool          { return l.p.Block }

func (l livePost) EpisodeAudioID() (int64, bool) {
	if l.p.AudioID == nil {
		return 0, false
	}
	return *l.p.AudioID, true
}

// cachedPost is a rehydrated stand-in decoded from a cache payload. It
// carries the same scalar fields as a live post but is never persisted.
type cachedPost struct {
	id              int64
	title           string
	slug            string
	body            string
	visibleDate     time.Time
	commentsEnabled bool
	episodeAudioID  *int64
	explicit        bool
	keywords        string
	blocked         bool
}

func (c cachedPost) ID() int64              { return c.id }
func (c cachedPost) Title() string          { return c.title }
func (c cachedPost) Slug() string           { return c.slug }
func (c cachedPost) Body() string           { return c.body }
func (c cachedPost) VisibleDate() time.Time { return c.visibleDate }
func (c cachedPost) CommentsEnabled() bool  { return c.commentsEnabled }
func (c cachedPost) Explicit() bool         { return c.explicit }
func (c cachedPost) Keywords() string       { return c.keywords }
func (c cachedPost) Blocked() bool          { return c.blocked }

func (c cachedPost) EpisodeAudioID() (int64, bool) {
	if c.episodeAudioID == nil {
		return 0, false
	}
	return *c.episodeAudioID, true
}
