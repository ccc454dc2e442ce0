package snapshot

import (
	"context"
	"testing"

	"github.com/dkarlsen/go-blog-cache/internal/blocks"
)

func TestResolver_SnapshotFirst(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	var fallbackCalls int
	fallback := blocks.ResolverFunc(func(id int64) (blocks.Link, bool) {
		fallbackCalls++
		return blocks.Link{URL: "/elsewhere/", Title: "Elsewhere"}, true
	})
	r := s.Resolver(fallback)

	// Post 1 is in the snapshot: resolved without the fallback.
	link, ok := r.ResolvePage(1)
	if !ok || link.URL != "/travel/harbor-walk/" || link.Title != "Harbor Walk" {
		t.Fatalf("snapshot link: %+v ok=%v", link, ok)
	}
	if fallbackCalls != 0 {
		t.Fatalf("fallback consulted for an in-snapshot id")
	}

	// An outside id goes to the fallback.
	link, ok = r.ResolvePage(999)
	if !ok || link.URL != "/elsewhere/" {
		t.Fatalf("fallback link: %+v ok=%v", link, ok)
	}
	if fallbackCalls != 1 {
		t.Fatalf("fallback calls: %d", fallbackCalls)
	}
}

func TestResolver_NilFallback(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	if _, ok := s.Resolver(nil).ResolvePage(999); ok {
		t.Fatalf("nil fallback must leave outside ids unresolved")
	}
}

func TestLiveResolver(t *testing.T) {
	db := newSnapshotDB(t)
	seedScenario(t, db)

	r := NewLiveResolver(context.Background(), db)

	link, ok := r.ResolvePage(2)
	if !ok || link.URL != "/travel/episode-1/" || link.Title != "Episode 1" {
		t.Fatalf("live link: %+v ok=%v", link, ok)
	}

	if _, ok := r.ResolvePage(12345); ok {
		t.Fatalf("unknown id resolved")
	}
}

func TestLiveResolver_SkipsDeleted(t *testing.T) {
	db := newSnapshotDB(t)
	_, _, posts := seedScenario(t, db)
	if err := db.Delete(&posts[1]).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, ok := NewLiveResolver(context.Background(), db).ResolvePage(2); ok {
		t.Fatalf("soft-deleted post resolved")
	}
}
