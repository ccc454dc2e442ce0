// Package snapshot materializes a set of posts and all their related media
// into a self-contained, serializable Snapshot. Once a Snapshot is built
// (or decoded from a cache payload), rendering any page from it issues zero
// further queries to the backing store.
package snapshot

import (
	"github.com/dkarlsen/go-blog-cache/internal/blocks"
	"github.com/dkarlsen/go-blog-cache/internal/domain"
)

// NavLink is one entry of the site-level root navigation.
type NavLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Snapshot is the unit of caching: every record and derived value needed
// to render a page for one set of posts, keyed by integer id. A Snapshot
// is request-scoped and read-only after construction.
//
// Invariant: every id referenced by a per-post set exists as a key in the
// corresponding ...ByID map (checked by Validate).
type Snapshot struct {
	Blog            domain.Blog
	Site            domain.Site
	TemplateBaseDir string

	// PostIDs preserves the caller's ordering; PostByID holds the records.
	PostIDs  []int64
	PostByID map[int64]Record

	ImageByID map[int64]domain.Image
	VideoByID map[int64]domain.Video
	AudioByID map[int64]domain.Audio

	ImagesByPostID map[int64][]int64
	VideosByPostID map[int64][]int64
	AudiosByPostID map[int64][]int64

	OwnerNameByPostID       map[int64]string
	HasAudioByPostID        map[int64]bool
	PageURLByPostID         map[int64]string
	AbsolutePageURLByPostID map[int64]string
	CoverURLByPostID        map[int64]string
	CoverAltByPostID        map[int64]string

	// RenditionsByImageID lists every precomputed variant of each image,
	// in stable per-image order.
	RenditionsByImageID map[int64][]domain.Rendition

	// Podcast data: attached episode audio per post and transcripts per audio.
	EpisodeAudioByPostID map[int64]int64
	TranscriptByAudioID  map[int64]domain.Transcript

	RootNavLinks []NavLink
}

// Posts returns the post records in the snapshot's order.
func (s *Snapshot) Posts() []Record {
	out := make([]Record, 0, len(s.PostIDs))
	for _, id := range s.PostIDs {
		out = append(out, s.PostByID[id])
	}
	return out
}

// Rendition returns the variant of an image matching a filter spec.
func (s *Snapshot) Rendition(imageID int64, spec string) (domain.Rendition, bool) {
	for _, r := range s.RenditionsByImageID[imageID] {
		if r.FilterSpec == spec {
			return r, true
		}
	}
	return domain.Rendition{}, false
}

// ImageRendition implements blocks.MediaSource.
func (s *Snapshot) ImageRendition(imageID int64, spec string) (blocks.ImageRef, bool) {
	r, ok := s.Rendition(imageID, spec)
	if !ok {
		return blocks.ImageRef{}, false
	}
	img, ok := s.ImageByID[imageID]
	if !ok {
		return blocks.ImageRef{}, false
	}
	return blocks.ImageRef{
		URL:    mediaURL(r.FilePath),
		Width:  r.Width,
		Height: r.Height,
		Alt:    imageAlt(img),
	}, true
}

// AudioSource implements blocks.MediaSource.
func (s *Snapshot) AudioSource(audioID int64) (blocks.MediaRef, bool) {
	a, ok := s.AudioByID[audioID]
	if !ok {
		return blocks.MediaRef{}, false
	}
	return blocks.MediaRef{URL: mediaURL(a.FilePath)}, true
}

// VideoSource implements blocks.MediaSource.
func (s *Snapshot) VideoSource(videoID int64) (blocks.MediaRef, bool) {
	v, ok := s.VideoByID[videoID]
	if !ok {
		return blocks.MediaRef{}, false
	}
	return blocks.MediaRef{URL: mediaURL(v.FilePath), Poster: mediaURL(v.PosterPath)}, true
}

// Validate checks the snapshot's referential integrity: every id referenced
// by a per-post set must exist in its entity map, and every per-post set
// must belong to a post in the snapshot. Returns ErrSnapshotCorrupt on the
// first violation.
func (s *Snapshot) Validate() error {
	if s.PostByID == nil {
		return corruptf("post map missing")
	}
	for _, id := range s.PostIDs {
		if _, ok := s.PostByID[id]; !ok {
			return corruptf("post %d in ordering but not in post map", id)
		}
	}
	if len(s.PostByID) != len(s.PostIDs) {
		return corruptf("post map has %d entries, ordering has %d", len(s.PostByID), len(s.PostIDs))
	}
	for postID, ids := range s.ImagesByPostID {
		if _, ok := s.PostByID[postID]; !ok {
			return corruptf("image set for unknown post %d", postID)
		}
		for _, id := range ids {
			if _, ok := s.ImageByID[id]; !ok {
				return corruptf("post %d references missing image %d", postID, id)
			}
		}
	}
	for postID, ids := range s.VideosByPostID {
		if _, ok := s.PostByID[postID]; !ok {
			return corruptf("video set for unknown post %d", postID)
		}
		for _, id := range ids {
			if _, ok := s.VideoByID[id]; !ok {
				return corruptf("post %d references missing video %d", postID, id)
			}
		}
	}
	for postID, ids := range s.AudiosByPostID {
		if _, ok := s.PostByID[postID]; !ok {
			return corruptf("audio set for unknown post %d", postID)
		}
		for _, id := range ids {
			if _, ok := s.AudioByID[id]; !ok {
				return corruptf("post %d references missing audio %d", postID, id)
			}
		}
	}
	for postID, audioID := range s.EpisodeAudioByPostID {
		if _, ok := s.PostByID[postID]; !ok {
			return corruptf("episode audio for unknown post %d", postID)
		}
		if _, ok := s.AudioByID[audioID]; !ok {
			return corruptf("post %d references missing episode audio %d", postID, audioID)
		}
	}
	for imageID := range s.RenditionsByImageID {
		if _, ok := s.ImageByID[imageID]; !ok {
			return corruptf("renditions for unknown image %d", imageID)
		}
	}
	return nil
}

// mediaURL maps a stored file path to its public URL.
func mediaURL(path string) string {
	if path == "" {
		return ""
	}
	return "/media/" + path
}

// imageAlt prefers explicit alt text, falling back to the image title.
func imageAlt(img domain.Image) string {
	if img.AltText != "" {
		return img.AltText
	}
	return img.Title
}
