package pagerepo

import (
	"testing"
	"time"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

var visibleAt = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

// emptyPayload returns a payload with every required key present and empty.
func emptyPayload() *snapshot.Payload {
	return &snapshot.Payload{
		Version: snapshot.PayloadVersion,
		Blog:    domain.Blog{ID: 1, SiteID: 1, Slug: "travel", Title: "Travel", TemplateBaseDir: "themes/coastal"},
		Site:    domain.Site{ID: 1, Hostname: "example.com", Name: "Example", RootURL: "https://example.com"},

		TemplateBaseDir: "themes/coastal",

		PostIDs:  []int64{},
		PostByID: map[int64]snapshot.PostPayload{},

		Images: map[int64]domain.Image{},
		Videos: map[int64]domain.Video{},
		Audios: map[int64]domain.Audio{},

		RenditionsForPosts: map[int64][]domain.Rendition{},

		ImagesByPostID: map[int64][]int64{},
		VideosByPostID: map[int64][]int64{},
		AudiosByPostID: map[int64][]int64{},

		CoverByPostID:       map[int64]string{},
		CoverAltByPostID:    map[int64]string{},
		HasAudioByID:        map[int64]bool{},
		OwnerUsernameByID:   map[int64]string{},
		PageURLByID:         map[int64]string{},
		AbsolutePageURLByID: map[int64]string{},

		RootNavLinks: []snapshot.NavLink{{Title: "Travel", URL: "/travel/"}},

		PodcastAudioByEpisodeID: map[int64]int64{},
		Transcripts:             map[int64]domain.Transcript{},
	}
}

// addPost appends a minimal post to a payload, wiring its derived maps.
func addPost(p *snapshot.Payload, id int64, slug string) {
	p.PostIDs = append(p.PostIDs, id)
	p.PostByID[id] = snapshot.PostPayload{
		ID:          id,
		Title:       slug,
		Slug:        slug,
		Body:        `[{"type":"paragraph","text":"` + slug + `"}]`,
		VisibleDate: visibleAt,
	}
	p.OwnerUsernameByID[id] = "ada"
	p.HasAudioByID[id] = false
	p.PageURLByID[id] = "/travel/" + slug + "/"
	p.AbsolutePageURLByID[id] = "https://example.com/travel/" + slug + "/"
}

// decodeSnapshot turns a payload into a snapshot or fails the test.
func decodeSnapshot(t *testing.T, p *snapshot.Payload) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.Decode(p)
	if err != nil {
		t.Fatalf("decode test snapshot: %v", err)
	}
	return s
}
