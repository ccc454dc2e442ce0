// Package snapshot materializes a set of posts and all their related media
// into a self-contained, serializable Snapshot. This file implements the
// cache codec: Encode flattens a snapshot into a plain-data payload
// (scalars, lists, string-keyed maps only, no live object references) that
// survives any serialization format; Decode reconstructs behaviorally
// equivalent stand-in records from it. Decode(Encode(s)) renders
// identically to s.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
)

// PayloadVersion is bumped whenever the payload schema changes shape.
// Decode rejects payloads written by a different version so schema drift
// between writer and reader surfaces as ErrSnapshotCorrupt, not as subtly
// wrong pages.
const PayloadVersion = 1

// PostPayload is the flattened scalar form of a post record.
type PostPayload struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Body            string    `json:"body"`
	VisibleDate     time.Time `json:"visible_date"`
	CommentsEnabled bool      `json:"comments_enabled"`
	AudioID         *int64    `json:"audio_id,omitempty"`
	Explicit        bool      `json:"explicit"`
	Keywords        string    `json:"keywords"`
	Block           bool      `json:"block"`
}

// Payload is the plain-data cache representation of a Snapshot. Integer map
// keys serialize as JSON strings; every field is a scalar, a list, or a map
// thereof. Repository variants embed this struct and add their own keys
// (filterset, pagination_context, ...).
type Payload struct {
	Version int `json:"version"`

	Blog            domain.Blog `json:"blog"`
	Site            domain.Site `json:"site"`
	TemplateBaseDir string      `json:"template_base_dir"`

	PostIDs  []int64               `json:"post_ids"`
	PostByID map[int64]PostPayload `json:"post_by_id"`

	Images map[int64]domain.Image `json:"images"`
	Videos map[int64]domain.Video `json:"videos"`
	Audios map[int64]domain.Audio `json:"audios"`

	// RenditionsForPosts holds the renditions of every image in the
	// snapshot, keyed by owning image id, per-image order preserved.
	RenditionsForPosts map[int64][]domain.Rendition `json:"renditions_for_posts"`

	ImagesByPostID map[int64][]int64 `json:"images_by_post_id"`
	VideosByPostID map[int64][]int64 `json:"videos_by_post_id"`
	AudiosByPostID map[int64][]int64 `json:"audios_by_post_id"`

	CoverByPostID       map[int64]string `json:"cover_by_post_id"`
	CoverAltByPostID    map[int64]string `json:"cover_alt_by_post_id"`
	HasAudioByID        map[int64]bool   `json:"has_audio_by_id"`
	OwnerUsernameByID   map[int64]string `json:"owner_username_by_id"`
	PageURLByID         map[int64]string `json:"page_url_by_id"`
	AbsolutePageURLByID map[int64]string `json:"absolute_page_url_by_id"`

	RootNavLinks []NavLink `json:"root_nav_links"`

	PodcastAudioByEpisodeID map[int64]int64             `json:"podcast_audio_by_episode_id"`
	Transcripts             map[int64]domain.Transcript `json:"transcripts"`
}

// Encode flattens a snapshot into its plain-data payload. All maps and
// lists are emitted non-nil so Decode can distinguish "empty" from
// "key missing".
func Encode(s *Snapshot) *Payload {
	p := &Payload{
		Version:         PayloadVersion,
		Blog:            s.Blog,
		Site:            s.Site,
		TemplateBaseDir: s.TemplateBaseDir,

		PostIDs:  append([]int64{}, s.PostIDs...),
		PostByID: make(map[int64]PostPayload, len(s.PostByID)),

		Images: copyMap(s.ImageByID),
		Videos: copyMap(s.VideoByID),
		Audios: copyMap(s.AudioByID),

		RenditionsForPosts: copySliceMap(s.RenditionsByImageID),

		ImagesByPostID: copySliceMap(s.ImagesByPostID),
		VideosByPostID: copySliceMap(s.VideosByPostID),
		AudiosByPostID: copySliceMap(s.AudiosByPostID),

		CoverByPostID:       copyMap(s.CoverURLByPostID),
		CoverAltByPostID:    copyMap(s.CoverAltByPostID),
		HasAudioByID:        copyMap(s.HasAudioByPostID),
		OwnerUsernameByID:   copyMap(s.OwnerNameByPostID),
		PageURLByID:         copyMap(s.PageURLByPostID),
		AbsolutePageURLByID: copyMap(s.AbsolutePageURLByPostID),

		RootNavLinks: append([]NavLink{}, s.RootNavLinks...),

		PodcastAudioByEpisodeID: copyMap(s.EpisodeAudioByPostID),
		Transcripts:             copyMap(s.TranscriptByAudioID),
	}

	for id, rec := range s.PostByID {
		pp := PostPayload{
			ID:              rec.ID(),
			Title:           rec.Title(),
			Slug:            rec.Slug(),
			Body:            rec.Body(),
			VisibleDate:     rec.VisibleDate(),
			CommentsEnabled: rec.CommentsEnabled(),
			Explicit:        rec.Explicit(),
			Keywords:        rec.Keywords(),
			Block:           rec.Blocked(),
		}
		if aid, ok := rec.EpisodeAudioID(); ok {
			pp.AudioID = &aid
		}
		p.PostByID[id] = pp
	}
	return p
}

// Decode reconstructs a snapshot from a payload. Records come back as
// never-persisted stand-ins; relations that are lazy queries on the live
// path are pre-populated from the per-post id sets. Any missing required
// key or dangling id reference returns ErrSnapshotCorrupt.
func Decode(p *Payload) (*Snapshot, error) {
	if p == nil {
		return nil, corruptf("payload missing")
	}
	if p.Version != PayloadVersion {
		return nil, corruptf("payload version %d, want %d", p.Version, PayloadVersion)
	}
	for key, absent := range map[string]bool{
		"post_ids":                p.PostIDs == nil,
		"post_by_id":              p.PostByID == nil,
		"images":                  p.Images == nil,
		"videos":                  p.Videos == nil,
		"audios":                  p.Audios == nil,
		"renditions_for_posts":    p.RenditionsForPosts == nil,
		"images_by_post_id":       p.ImagesByPostID == nil,
		"videos_by_post_id":       p.VideosByPostID == nil,
		"audios_by_post_id":       p.AudiosByPostID == nil,
		"has_audio_by_id":         p.HasAudioByID == nil,
		"owner_username_by_id":    p.OwnerUsernameByID == nil,
		"page_url_by_id":          p.PageURLByID == nil,
		"absolute_page_url_by_id": p.AbsolutePageURLByID == nil,
	} {
		if absent {
			return nil, corruptf("required key %q missing", key)
		}
	}

	s := &Snapshot{
		Blog:            p.Blog,
		Site:            p.Site,
		TemplateBaseDir: p.TemplateBaseDir,

		PostIDs:  append([]int64{}, p.PostIDs...),
		PostByID: make(map[int64]Record, len(p.PostByID)),

		ImageByID: copyMap(p.Images),
		VideoByID: copyMap(p.Videos),
		AudioByID: copyMap(p.Audios),

		ImagesByPostID: copySliceMap(p.ImagesByPostID),
		VideosByPostID: copySliceMap(p.VideosByPostID),
		AudiosByPostID: copySliceMap(p.AudiosByPostID),

		OwnerNameByPostID:       copyMap(p.OwnerUsernameByID),
		HasAudioByPostID:        copyMap(p.HasAudioByID),
		PageURLByPostID:         copyMap(p.PageURLByID),
		AbsolutePageURLByPostID: copyMap(p.AbsolutePageURLByID),
		CoverURLByPostID:        copyMap(p.CoverByPostID),
		CoverAltByPostID:        copyMap(p.CoverAltByPostID),

		RenditionsByImageID: copySliceMap(p.RenditionsForPosts),

		EpisodeAudioByPostID: copyMap(p.PodcastAudioByEpisodeID),
		TranscriptByAudioID:  copyMap(p.Transcripts),

		RootNavLinks: append([]NavLink{}, p.RootNavLinks...),
	}

	for id, pp := range p.PostByID {
		s.PostByID[id] = cachedPost{
			id:              pp.ID,
			title:           pp.Title,
			slug:            pp.Slug,
			body:            pp.Body,
			visibleDate:     pp.VisibleDate,
			commentsEnabled: pp.CommentsEnabled,
			episodeAudioID:  pp.AudioID,
			explicit:        pp.Explicit,
			keywords:        pp.Keywords,
			blocked:         pp.Block,
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal serializes a payload for the cache store.
func Marshal(p *Payload) ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal deserializes a cache store value. A payload that does not
// parse at all is reported as corrupt.
func Unmarshal(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, corruptf("unmarshal payload: %v", err)
	}
	return &p, nil
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySliceMap[K comparable, V any](in map[K][]V) map[K][]V {
	out := make(map[K][]V, len(in))
	for k, v := range in {
		out[k] = append([]V{}, v...)
	}
	return out
}
