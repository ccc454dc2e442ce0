package pagerepo

import (
	"errors"
	"strings"
	"testing"

	"github.com/dkarlsen/go-blog-cache/internal/repo"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	p := emptyPayload()
	addPost(p, 1, "harbor-walk")
	addPost(p, 2, "episode-1")
	p.HasAudioByID[2] = true

	fs := testFilterset(repo.PostFilters{Month: "2026-04"})
	ix, err := NewIndex(decodeSnapshot(t, p), fs, NewWindow(2, 2, 10))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return ix
}

func TestIndex_PostsSingleUse(t *testing.T) {
	ix := newTestIndex(t)

	if ix.Used() {
		t.Fatalf("fresh index reported used")
	}
	first := ix.Posts()
	if len(first) != 2 || first[0].ID() != 1 || first[1].ID() != 2 {
		t.Fatalf("first iteration: %v", first)
	}
	if !ix.Used() {
		t.Fatalf("index not marked used")
	}
	if second := ix.Posts(); second != nil {
		t.Fatalf("second iteration returned posts: %v", second)
	}
}

func TestIndex_Accessors(t *testing.T) {
	ix := newTestIndex(t)

	if ix.Blog().Slug != "travel" || ix.Theme() != "themes/coastal" {
		t.Fatalf("blog/theme: %+v %q", ix.Blog(), ix.Theme())
	}
	if !ix.PageHasAudio() {
		t.Fatalf("page with audio post reported silent")
	}
	if ix.OwnerName(1) != "ada" || ix.PageURL(1) != "/travel/harbor-walk/" {
		t.Fatalf("per-post accessors: %q %q", ix.OwnerName(1), ix.PageURL(1))
	}
	if w := ix.Window(); w.Page != 2 || !w.HasPrevious() {
		t.Fatalf("window: %+v", w)
	}
}

func TestIndex_BodyHTML(t *testing.T) {
	ix := newTestIndex(t)

	html, err := ix.BodyHTML(1, nil)
	if err != nil {
		t.Fatalf("BodyHTML: %v", err)
	}
	if !strings.Contains(html, "<p>harbor-walk</p>") {
		t.Fatalf("body html: %q", html)
	}
	if html, err := ix.BodyHTML(999, nil); err != nil || html != "" {
		t.Fatalf("unknown post: %q %v", html, err)
	}
}

func TestIndex_CodecRoundTrip(t *testing.T) {
	ix := newTestIndex(t)

	data, err := EncodeIndex(ix)
	if err != nil {
		t.Fatalf("EncodeIndex: %v", err)
	}
	got, err := DecodeIndex(data)
	if err != nil {
		t.Fatalf("DecodeIndex: %v", err)
	}

	// The decoded repository is fresh: it can be iterated once again.
	if got.Used() {
		t.Fatalf("decoded index already used")
	}
	if posts := got.Posts(); len(posts) != 2 {
		t.Fatalf("decoded posts: %v", posts)
	}

	// The previously selected facet re-applies against cached choices.
	fs := got.Filterset()
	if !fs.Active() {
		t.Fatalf("decoded filterset inactive")
	}
	c, ok := fs.SelectedDate()
	if !ok || c.Value != "2026-04" || c.Count != 2 {
		t.Fatalf("decoded selected date: %+v ok=%v", c, ok)
	}

	// Pagination state survives.
	w := got.Window()
	if w.Page != 2 || w.PageSize != 2 || w.TotalPages != 5 || !w.HasNext() || !w.HasPrevious() {
		t.Fatalf("decoded window: %+v", w)
	}
}

func TestDecodeIndex_MissingSections(t *testing.T) {
	ix := newTestIndex(t)
	data, err := EncodeIndex(ix)
	if err != nil {
		t.Fatalf("EncodeIndex: %v", err)
	}

	// A bare snapshot payload is not an index payload.
	bare, err := snapshot.Marshal(snapshot.Encode(decodeSnapshot(t, emptyPayload())))
	if err != nil {
		t.Fatalf("marshal bare payload: %v", err)
	}
	if _, err := DecodeIndex(bare); !errors.Is(err, snapshot.ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt for missing sections, got %v", err)
	}

	if _, err := DecodeIndex([]byte("}{")); !errors.Is(err, snapshot.ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt for garbage, got %v", err)
	}

	// Sanity: the untampered payload decodes.
	if _, err := DecodeIndex(data); err != nil {
		t.Fatalf("DecodeIndex: %v", err)
	}
}
