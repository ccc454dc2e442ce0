package snapshot

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dkarlsen/go-blog-cache/internal/blocks"
)

// renderAll renders every post of a snapshot without a fallback resolver.
func renderAll(t *testing.T, s *Snapshot) map[int64]string {
	t.Helper()
	out := map[int64]string{}
	for _, rec := range s.Posts() {
		html, err := blocks.Render(rec.Body(), s, s.Resolver(nil))
		if err != nil {
			t.Fatalf("render post %d: %v", rec.ID(), err)
		}
		out[rec.ID()] = html
	}
	return out
}

func TestCodec_RoundTripRendersIdentically(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)
	want := renderAll(t, s)

	data, err := Marshal(Encode(s))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// Byte-for-byte identical HTML for every post.
	rendered := renderAll(t, got)
	for id, html := range want {
		if rendered[id] != html {
			t.Fatalf("post %d render differs:\nlive:    %q\ndecoded: %q", id, html, rendered[id])
		}
	}

	// The decoded render above exercises the video block, so the body
	// side is covered; check the attachment maps directly too.
	if gotIDs := got.ImagesByPostID[1]; len(gotIDs) != 2 || gotIDs[0] != 10 || gotIDs[1] != 11 {
		t.Fatalf("gallery image set lost: %v", gotIDs)
	}
	if gotIDs := got.VideosByPostID[1]; len(gotIDs) != 1 || gotIDs[0] != 7 {
		t.Fatalf("videos lost: %v", gotIDs)
	}
	if ref, ok := got.VideoSource(7); !ok || ref.URL != "/media/pier.mp4" || ref.Poster != "/media/pier.jpg" {
		t.Fatalf("video source: %+v ok=%v", ref, ok)
	}

	// Derived values survive the round trip.
	if got.PageURLByPostID[1] != s.PageURLByPostID[1] {
		t.Fatalf("page url lost: %q", got.PageURLByPostID[1])
	}
	if got.OwnerNameByPostID[2] != "grace" {
		t.Fatalf("owner name lost: %q", got.OwnerNameByPostID[2])
	}
	if got.TranscriptByAudioID[5].FilePath != "ep1.vtt" {
		t.Fatalf("transcript lost: %+v", got.TranscriptByAudioID)
	}
	if got.TemplateBaseDir != "themes/coastal" {
		t.Fatalf("theme lost: %q", got.TemplateBaseDir)
	}
}

func TestCodec_RecordEquivalence(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	p := Encode(s)
	got, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for _, id := range s.PostIDs {
		live, cached := s.PostByID[id], got.PostByID[id]
		if live.Title() != cached.Title() || live.Slug() != cached.Slug() || live.Body() != cached.Body() {
			t.Fatalf("post %d scalar mismatch", id)
		}
		if !live.VisibleDate().Equal(cached.VisibleDate()) {
			t.Fatalf("post %d visible date mismatch", id)
		}
		la, lok := live.EpisodeAudioID()
		ca, cok := cached.EpisodeAudioID()
		if lok != cok || la != ca {
			t.Fatalf("post %d episode audio mismatch", id)
		}
	}
}

func TestDecode_VersionMismatch(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	p := Encode(s)
	p.Version = PayloadVersion + 1
	if _, err := Decode(p); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt, got %v", err)
	}
}

func TestDecode_MissingRequiredKey(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	p := Encode(s)
	p.Images = nil
	if _, err := Decode(p); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt, got %v", err)
	}
}

func TestDecode_DanglingReference(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	p := Encode(s)
	p.ImagesByPostID[1] = append(p.ImagesByPostID[1], 999)
	if _, err := Decode(p); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt, got %v", err)
	}
}

func TestDecode_NilPayload(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt, got %v", err)
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	if _, err := Unmarshal([]byte("{truncated")); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("want ErrSnapshotCorrupt, got %v", err)
	}
}

// Integer map keys must serialize as JSON object keys (strings), the
// portable plain-data form.
func TestMarshal_IntKeysAsStrings(t *testing.T) {
	db := newSnapshotDB(t)
	s := buildScenario(t, db)

	data, err := Marshal(Encode(s))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	var posts map[string]json.RawMessage
	if err := json.Unmarshal(raw["post_by_id"], &posts); err != nil {
		t.Fatalf("post_by_id not an object: %v", err)
	}
	if _, ok := posts["1"]; !ok {
		t.Fatalf("post_by_id keys: %v", posts)
	}
	for _, key := range []string{
		"images", "renditions_for_posts", "images_by_post_id",
		"has_audio_by_id", "owner_username_by_id", "page_url_by_id",
		"absolute_page_url_by_id", "cover_by_post_id",
		"podcast_audio_by_episode_id", "transcripts", "root_nav_links",
		"template_base_dir", "blog", "site",
	} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("payload key %q missing", key)
		}
	}
}
