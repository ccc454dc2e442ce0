package repo

import (
	"context"
	"testing"
	"time"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
)

func TestMonthFacetCounts(t *testing.T) {
	db := newContentDB(t)
	seedBlog(t, db)
	seedPost(t, db, 1, "jan-a", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	seedPost(t, db, 2, "jan-b", time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	seedPost(t, db, 3, "apr-a", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	seedPost(t, db, 4, "future", testNow.Add(time.Hour))

	rows, err := MonthFacetCounts(context.Background(), db, 1, testNow)
	if err != nil {
		t.Fatalf("MonthFacetCounts: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d months, want 2: %+v", len(rows), rows)
	}
	// Newest month first; future posts contribute nothing.
	if rows[0].Value != "2026-04" || rows[0].Count != 1 {
		t.Fatalf("first row: %+v", rows[0])
	}
	if rows[1].Value != "2026-01" || rows[1].Count != 2 {
		t.Fatalf("second row: %+v", rows[1])
	}
}

func TestCategoryAndTagFacetCounts(t *testing.T) {
	db := newContentDB(t)
	seedBlog(t, db)
	seedPost(t, db, 1, "a", testNow.Add(-time.Hour))
	seedPost(t, db, 2, "b", testNow.Add(-2*time.Hour))

	mustCreate(t, db, &domain.Category{ID: 1, Slug: "nature", Name: "Nature"})
	mustCreate(t, db, &domain.Category{ID: 2, Slug: "city", Name: "City"})
	mustCreate(t, db, &domain.PostCategory{PostID: 1, CategoryID: 1})
	mustCreate(t, db, &domain.PostCategory{PostID: 2, CategoryID: 1})
	mustCreate(t, db, &domain.PostCategory{PostID: 2, CategoryID: 2})

	mustCreate(t, db, &domain.Tag{ID: 1, Slug: "fjord", Name: "Fjord"})
	mustCreate(t, db, &domain.PostTag{PostID: 1, TagID: 1})

	ctx := context.Background()

	cats, err := CategoryFacetCounts(ctx, db, 1, testNow)
	if err != nil {
		t.Fatalf("CategoryFacetCounts: %v", err)
	}
	// Ordered by name: City before Nature.
	if len(cats) != 2 || cats[0].Label != "City" || cats[0].Count != 1 || cats[1].Label != "Nature" || cats[1].Count != 2 {
		t.Fatalf("unexpected category facets: %+v", cats)
	}

	tags, err := TagFacetCounts(ctx, db, 1, testNow)
	if err != nil {
		t.Fatalf("TagFacetCounts: %v", err)
	}
	if len(tags) != 1 || tags[0].Value != "fjord" || tags[0].Count != 1 {
		t.Fatalf("unexpected tag facets: %+v", tags)
	}
}
