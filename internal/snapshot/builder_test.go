package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkarlsen/go-blog-cache/internal/blocks"
	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/repo"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newSnapshotDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("snapshot_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

// seedScenario seeds a blog with two published posts sharing image 10:
// post 1 embeds it as a body block, post 2 carries it as an attachment.
// Post 1 also has a gallery (repeating image 10 plus image 11) and an
// attached video. Post 2 is a podcast episode with audio and a
// transcript.
func seedScenario(t *testing.T, db *gorm.DB) (domain.Blog, domain.Site, []domain.Post) {
	t.Helper()

	mustCreate(t, db, &domain.User{ID: 1, Username: "ada", DisplayName: "Ada L."})
	mustCreate(t, db, &domain.User{ID: 2, Username: "grace"}) // no display name
	site := domain.Site{ID: 1, Hostname: "example.com", Name: "Example", RootURL: "https://example.com/"}
	mustCreate(t, db, &site)
	blog := domain.Blog{ID: 1, SiteID: 1, Slug: "travel", Title: "Travel", TemplateBaseDir: "themes/coastal", Language: "en"}
	mustCreate(t, db, &blog)
	mustCreate(t, db, &domain.Blog{ID: 2, SiteID: 1, Slug: "food", Title: "Food"})

	mustCreate(t, db, &domain.Image{ID: 10, Title: "Harbor", AltText: "the harbor", FilePath: "harbor.jpg", Width: 3000, Height: 2000})
	mustCreate(t, db, &domain.Rendition{ID: 1, ImageID: 10, FilterSpec: "width-600", FilePath: "harbor-600.jpg", Width: 600, Height: 400})
	mustCreate(t, db, &domain.Rendition{ID: 2, ImageID: 10, FilterSpec: "width-1200", FilePath: "harbor-1200.jpg", Width: 1200, Height: 800})
	mustCreate(t, db, &domain.Image{ID: 11, Title: "Dunes", AltText: "dune grass", FilePath: "dunes.jpg", Width: 3000, Height: 2000})
	mustCreate(t, db, &domain.Rendition{ID: 3, ImageID: 11, FilterSpec: "width-600", FilePath: "dunes-600.jpg", Width: 600, Height: 400})

	mustCreate(t, db, &domain.Video{ID: 7, Title: "Pier", FilePath: "pier.mp4", PosterPath: "pier.jpg", Width: 1920, Height: 1080})

	mustCreate(t, db, &domain.Audio{ID: 5, Title: "Episode 1", FilePath: "ep1.mp3", Duration: 1830})
	mustCreate(t, db, &domain.Transcript{ID: 1, AudioID: 5, Format: "text/vtt", FilePath: "ep1.vtt"})

	audioID := int64(5)
	p1 := domain.Post{
		ID: 1, BlogID: 1, OwnerID: 1, Slug: "harbor-walk", Title: "Harbor Walk",
		Body:        `[{"type":"paragraph","text":"Down by the water."},{"type":"image","image":10,"spec":"width-600"},{"type":"video","video":7}]`,
		VisibleDate: testNow.Add(-time.Hour), CommentsEnabled: true,
	}
	p2 := domain.Post{
		ID: 2, BlogID: 1, OwnerID: 2, Slug: "episode-1", Title: "Episode 1",
		Body:        `[{"type":"paragraph","text":"Show notes."}]`,
		VisibleDate: testNow.Add(-2 * time.Hour), AudioID: &audioID,
	}
	mustCreate(t, db, &p1)
	mustCreate(t, db, &p2)
	mustCreate(t, db, &domain.PostImage{PostID: 1, ImageID: 10, SortOrder: 1})
	mustCreate(t, db, &domain.PostImage{PostID: 2, ImageID: 10, SortOrder: 1})
	mustCreate(t, db, &domain.Gallery{ID: 1, PostID: 1, Title: "Shore"})
	mustCreate(t, db, &domain.GalleryImage{GalleryID: 1, ImageID: 10, SortOrder: 1})
	mustCreate(t, db, &domain.GalleryImage{GalleryID: 1, ImageID: 11, SortOrder: 2})
	mustCreate(t, db, &domain.PostVideo{PostID: 1, VideoID: 7, SortOrder: 1})

	return blog, site, []domain.Post{p1, p2}
}

func buildScenario(t *testing.T, db *gorm.DB) *Snapshot {
	t.Helper()
	blog, site, posts := seedScenario(t, db)
	s, err := BuildFromPosts(context.Background(), db, blog, site, posts)
	if err != nil {
		t.Fatalf("BuildFromPosts: %v", err)
	}
	return s
}

func TestBuildFromPosts_PopulatesEverything(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(s.PostIDs) != 2 || s.PostIDs[0] != 1 || s.PostIDs[1] != 2 {
		t.Fatalf("post ordering: %v", s.PostIDs)
	}
	if s.TemplateBaseDir != "themes/coastal" {
		t.Fatalf("theme: %q", s.TemplateBaseDir)
	}

	// Shared image fetched once, visible from both posts. The gallery
	// repeats image 10 on post 1; the per-post set stays deduplicated
	// with the direct attachment first, then the gallery-only image.
	if len(s.ImageByID) != 2 {
		t.Fatalf("images: %+v", s.ImageByID)
	}
	if got := s.ImagesByPostID[1]; len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Fatalf("post 1 image set: %v", got)
	}
	if got := s.ImagesByPostID[2]; len(got) != 1 || got[0] != 10 {
		t.Fatalf("post 2 image set: %v", got)
	}

	// Attached video.
	if got := s.VideosByPostID[1]; len(got) != 1 || got[0] != 7 {
		t.Fatalf("post 1 videos: %v", got)
	}
	if s.VideoByID[7].FilePath != "pier.mp4" {
		t.Fatalf("video: %+v", s.VideoByID)
	}
	if len(s.RenditionsByImageID[10]) != 2 {
		t.Fatalf("renditions: %+v", s.RenditionsByImageID)
	}

	// URLs.
	if got := s.PageURLByPostID[1]; got != "/travel/harbor-walk/" {
		t.Fatalf("page url: %q", got)
	}
	if got := s.AbsolutePageURLByPostID[1]; got != "https://example.com/travel/harbor-walk/" {
		t.Fatalf("absolute url: %q", got)
	}

	// Owner names: display name, else username.
	if s.OwnerNameByPostID[1] != "Ada L." || s.OwnerNameByPostID[2] != "grace" {
		t.Fatalf("owner names: %+v", s.OwnerNameByPostID)
	}

	// Episode audio and transcript.
	if s.EpisodeAudioByPostID[2] != 5 {
		t.Fatalf("episode audio: %+v", s.EpisodeAudioByPostID)
	}
	if s.TranscriptByAudioID[5].FilePath != "ep1.vtt" {
		t.Fatalf("transcript: %+v", s.TranscriptByAudioID)
	}
	if !s.HasAudioByPostID[2] || s.HasAudioByPostID[1] {
		t.Fatalf("has audio: %+v", s.HasAudioByPostID)
	}

	// Cover: the width-1200 rendition of the first image.
	if got := s.CoverURLByPostID[1]; got != "/media/harbor-1200.jpg" {
		t.Fatalf("cover url: %q", got)
	}
	if got := s.CoverAltByPostID[1]; got != "the harbor" {
		t.Fatalf("cover alt: %q", got)
	}

	// Root navigation: both blogs of the site, by title.
	if len(s.RootNavLinks) != 2 || s.RootNavLinks[0].URL != "/food/" || s.RootNavLinks[1].URL != "/travel/" {
		t.Fatalf("nav links: %+v", s.RootNavLinks)
	}
}

// A snapshot must answer everything without the store. Closing the
// database after the build proves rendering stays I/O-free.
func TestBuildFromPosts_NoQueriesAfterBuild(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, rec := range s.Posts() {
		html, err := blocks.Render(rec.Body(), s, s.Resolver(nil))
		if err != nil {
			t.Fatalf("render post %d: %v", rec.ID(), err)
		}
		if html == "" {
			t.Fatalf("post %d rendered empty", rec.ID())
		}
	}
	if _, ok := s.Rendition(10, "width-600"); !ok {
		t.Fatalf("rendition lookup failed after close")
	}
}

func TestSnapshot_MediaSource(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	ref, ok := s.ImageRendition(10, "width-600")
	if !ok {
		t.Fatalf("rendition missing")
	}
	if ref.URL != "/media/harbor-600.jpg" || ref.Width != 600 || ref.Alt != "the harbor" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if _, ok := s.ImageRendition(10, "width-9999"); ok {
		t.Fatalf("unknown spec should miss")
	}

	aref, ok := s.AudioSource(5)
	if !ok || aref.URL != "/media/ep1.mp3" {
		t.Fatalf("audio source: %+v ok=%v", aref, ok)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	s.ImagesByPostID[1] = append(s.ImagesByPostID[1], 999)
	err := s.Validate()
	if err == nil {
		t.Fatalf("expected corrupt error")
	}
	if !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt, got %v", err)
	}
}

func TestBuildFromPosts_Empty(t *testing.T) {
	db := newSnapshotDB(t)
	blog, site, _ := seedScenario(t, db)

	s, err := BuildFromPosts(context.Background(), db, blog, site, nil)
	if err != nil {
		t.Fatalf("BuildFromPosts: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(s.Posts()) != 0 {
		t.Fatalf("expected no posts")
	}
}
