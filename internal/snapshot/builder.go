// Package snapshot materializes a set of posts and all their related media
// into a self-contained, serializable Snapshot. This file implements the
// builder: one bounded batch of fetches per related entity type (owners,
// images, galleries, renditions, videos, audios, transcripts), never one
// fetch per post. After BuildFromPosts returns, no field of the Snapshot
// requires further I/O to read.
package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/blocks"
	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/repo"
)

// coverSpec is the rendition variant preferred for post cover images.
const coverSpec = "width-1200"

var buildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "snapshot_build_duration_seconds",
	Help:    "Time spent materializing a snapshot from the store.",
	Buckets: prometheus.DefBuckets,
})

func init() {
	prometheus.MustRegister(buildSeconds)
}

// BuildFromPosts materializes a snapshot for an ordered post collection.
// The input must already reflect the caller's filtering, pagination, and
// ordering; the builder neither re-queries nor re-orders posts.
func BuildFromPosts(ctx context.Context, db *gorm.DB, blog domain.Blog, site domain.Site, posts []domain.Post) (*Snapshot, error) {
	start := time.Now()
	defer func() { buildSeconds.Observe(time.Since(start).Seconds()) }()

	s := &Snapshot{
		Blog:            blog,
		Site:            site,
		TemplateBaseDir: blog.TemplateBaseDir,

		PostIDs:  make([]int64, 0, len(posts)),
		PostByID: make(map[int64]Record, len(posts)),

		ImageByID: map[int64]domain.Image{},
		VideoByID: map[int64]domain.Video{},
		AudioByID: map[int64]domain.Audio{},

		ImagesByPostID: map[int64][]int64{},
		VideosByPostID: map[int64][]int64{},
		AudiosByPostID: map[int64][]int64{},

		OwnerNameByPostID:       map[int64]string{},
		HasAudioByPostID:        map[int64]bool{},
		PageURLByPostID:         map[int64]string{},
		AbsolutePageURLByPostID: map[int64]string{},
		CoverURLByPostID:        map[int64]string{},
		CoverAltByPostID:        map[int64]string{},

		RenditionsByImageID:  map[int64][]domain.Rendition{},
		EpisodeAudioByPostID: map[int64]int64{},
		TranscriptByAudioID:  map[int64]domain.Transcript{},
	}

	postIDs := make([]int64, 0, len(posts))
	ownerIDs := make([]int64, 0, len(posts))
	seenOwner := map[int64]bool{}
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		s.PostIDs = append(s.PostIDs, p.ID)
		s.PostByID[p.ID] = livePost{p: p}
		if !seenOwner[p.OwnerID] {
			seenOwner[p.OwnerID] = true
			ownerIDs = append(ownerIDs, p.OwnerID)
		}
	}

	// Owners.
	owners, err := repo.UsersByID(ctx, db, ownerIDs)
	if err != nil {
		return nil, err
	}

	// Images: direct attachments first, then gallery images, deduplicated
	// per post while preserving order.
	directImages, err := repo.DirectImagePairs(ctx, db, postIDs)
	if err != nil {
		return nil, err
	}
	galleryImages, err := repo.GalleryImagePairs(ctx, db, postIDs)
	if err != nil {
		return nil, err
	}
	imageIDs := collectPairs(s.ImagesByPostID, append(directImages, galleryImages...))
	if s.ImageByID, err = repo.ImagesByID(ctx, db, imageIDs); err != nil {
		return nil, err
	}
	if s.RenditionsByImageID, err = repo.RenditionsForImages(ctx, db, imageIDs); err != nil {
		return nil, err
	}

	// Videos.
	videoPairs, err := repo.VideoPairs(ctx, db, postIDs)
	if err != nil {
		return nil, err
	}
	videoIDs := collectPairs(s.VideosByPostID, videoPairs)
	if s.VideoByID, err = repo.VideosByID(ctx, db, videoIDs); err != nil {
		return nil, err
	}

	// Audios: direct attachments, podcast episode audio, and audio blocks
	// embedded in post bodies all come from one batched fetch.
	audioPairs, err := repo.AudioPairs(ctx, db, postIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.AudioID != nil {
			s.EpisodeAudioByPostID[p.ID] = *p.AudioID
			audioPairs = append(audioPairs, [2]int64{p.ID, *p.AudioID})
		}
		for _, id := range blocks.AudioIDs(p.Body) {
			audioPairs = append(audioPairs, [2]int64{p.ID, id})
		}
	}
	audioIDs := collectPairs(s.AudiosByPostID, audioPairs)
	if s.AudioByID, err = repo.AudiosByID(ctx, db, audioIDs); err != nil {
		return nil, err
	}

	// Transcripts for episode audio.
	episodeAudioIDs := make([]int64, 0, len(s.EpisodeAudioByPostID))
	for _, id := range s.EpisodeAudioByPostID {
		episodeAudioIDs = append(episodeAudioIDs, id)
	}
	if s.TranscriptByAudioID, err = repo.TranscriptsForAudios(ctx, db, episodeAudioIDs); err != nil {
		return nil, err
	}

	// Root navigation.
	navBlogs, err := repo.BlogsForSite(ctx, db, site.ID)
	if err != nil {
		return nil, err
	}
	for _, b := range navBlogs {
		s.RootNavLinks = append(s.RootNavLinks, NavLink{Title: b.Title, URL: "/" + b.Slug + "/"})
	}

	// Derived per-post maps.
	root := strings.TrimRight(site.RootURL, "/")
	for _, p := range posts {
		pageURL := "/" + blog.Slug + "/" + p.Slug + "/"
		s.PageURLByPostID[p.ID] = pageURL
		s.AbsolutePageURLByPostID[p.ID] = root + pageURL

		if u, ok := owners[p.OwnerID]; ok {
			s.OwnerNameByPostID[p.ID] = ownerName(u)
		}
		s.HasAudioByPostID[p.ID] = len(s.AudiosByPostID[p.ID]) > 0

		if imgs := s.ImagesByPostID[p.ID]; len(imgs) > 0 {
			img := s.ImageByID[imgs[0]]
			s.CoverURLByPostID[p.ID] = coverURL(img, s.RenditionsByImageID[imgs[0]])
			s.CoverAltByPostID[p.ID] = imageAlt(img)
		}
	}

	return s, nil
}

// collectPairs fills the per-post ordered id sets from (post id, media id)
// pairs, deduplicating per post, and returns the distinct media ids.
func collectPairs(byPost map[int64][]int64, pairs [][2]int64) []int64 {
	seen := map[[2]int64]bool{}
	distinct := map[int64]bool{}
	var ids []int64
	for _, pr := range pairs {
		if seen[pr] {
			continue
		}
		seen[pr] = true
		byPost[pr[0]] = append(byPost[pr[0]], pr[1])
		if !distinct[pr[1]] {
			distinct[pr[1]] = true
			ids = append(ids, pr[1])
		}
	}
	return ids
}

func ownerName(u domain.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// coverURL prefers the cover rendition, falling back to the source file.
func coverURL(img domain.Image, rs []domain.Rendition) string {
	for _, r := range rs {
		if r.FilterSpec == coverSpec {
			return mediaURL(r.FilePath)
		}
	}
	return mediaURL(img.FilePath)
}
