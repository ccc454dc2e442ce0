package blocks

import (
	"strings"
	"testing"
)

// fakeMedia is a MediaSource backed by literal maps.
type fakeMedia struct {
	images map[int64]map[string]ImageRef
	audios map[int64]MediaRef
	videos map[int64]MediaRef
}

func (f fakeMedia) ImageRendition(id int64, spec string) (ImageRef, bool) {
	ref, ok := f.images[id][spec]
	return ref, ok
}

func (f fakeMedia) AudioSource(id int64) (MediaRef, bool) {
	ref, ok := f.audios[id]
	return ref, ok
}

func (f fakeMedia) VideoSource(id int64) (MediaRef, bool) {
	ref, ok := f.videos[id]
	return ref, ok
}

func noLinks() LinkResolver {
	return ResolverFunc(func(int64) (Link, bool) { return Link{}, false })
}

func TestParse_EmptyBody(t *testing.T) {
	for _, body := range []string{"", "   ", "\n"} {
		bs, err := Parse(body)
		if err != nil {
			t.Fatalf("Parse(%q): %v", body, err)
		}
		if len(bs) != 0 {
			t.Fatalf("Parse(%q) = %v, want empty", body, bs)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("{not json"); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestRender_ParagraphEscapes(t *testing.T) {
	body := `[{"type":"paragraph","text":"a < b & c"}]`
	got, err := Render(body, fakeMedia{}, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "<p>a &lt; b &amp; c</p>\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRender_HeadingClampsLevel(t *testing.T) {
	body := `[{"type":"heading","text":"T","level":9},{"type":"heading","text":"U","level":3}]`
	got, err := Render(body, fakeMedia{}, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "<h2>T</h2>") {
		t.Fatalf("out-of-range level not clamped to h2: %q", got)
	}
	if !strings.Contains(got, "<h3>U</h3>") {
		t.Fatalf("level 3 missing: %q", got)
	}
}

func TestRender_Image(t *testing.T) {
	media := fakeMedia{images: map[int64]map[string]ImageRef{
		10: {"width-600": {URL: "/media/i/600.jpg", Width: 600, Height: 400, Alt: "boat"}},
	}}
	body := `[{"type":"image","image":10,"spec":"width-600"}]`
	got, err := Render(body, media, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "<img src=\"/media/i/600.jpg\" width=\"600\" height=\"400\" alt=\"boat\">\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRender_MissingMediaBecomesComment(t *testing.T) {
	body := `[{"type":"image","image":7,"spec":"x"},{"type":"audio","audio":8},{"type":"video","video":9}]`
	got, err := Render(body, fakeMedia{}, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		"<!-- missing image 7 -->",
		"<!-- missing audio 8 -->",
		"<!-- missing video 9 -->",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q missing %q", got, want)
		}
	}
}

func TestRender_VideoPoster(t *testing.T) {
	media := fakeMedia{videos: map[int64]MediaRef{
		3: {URL: "/media/v.mp4", Poster: "/media/v.jpg"},
		4: {URL: "/media/w.mp4"},
	}}
	body := `[{"type":"video","video":3},{"type":"video","video":4}]`
	got, err := Render(body, media, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, `poster="/media/v.jpg"`) {
		t.Fatalf("poster attribute missing: %q", got)
	}
	if strings.Contains(got, `src="/media/w.mp4" poster`) {
		t.Fatalf("empty poster should omit the attribute: %q", got)
	}
}

func TestRender_LinkResolved(t *testing.T) {
	links := ResolverFunc(func(id int64) (Link, bool) {
		if id == 42 {
			return Link{URL: "/travel/oslo/", Title: "Oslo"}, true
		}
		return Link{}, false
	})
	got, err := Render(`[{"type":"link","page":42}]`, fakeMedia{}, links)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "<p><a href=\"/travel/oslo/\">Oslo</a></p>\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Explicit text wins over the target title.
	got, err = Render(`[{"type":"link","page":42,"text":"see Oslo"}]`, fakeMedia{}, links)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, ">see Oslo</a>") {
		t.Fatalf("link text not used: %q", got)
	}
}

func TestRender_UnresolvedLinkDegradesToText(t *testing.T) {
	got, err := Render(`[{"type":"link","page":99,"text":"gone"}]`, fakeMedia{}, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(got, "<a ") {
		t.Fatalf("unresolved link rendered an anchor: %q", got)
	}
	if !strings.Contains(got, "<p>gone</p>") {
		t.Fatalf("link text not preserved: %q", got)
	}
}

func TestRender_UnknownBlockType(t *testing.T) {
	got, err := Render(`[{"type":"marquee","text":"x"}]`, fakeMedia{}, noLinks())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, `<!-- unknown block "marquee" -->`) {
		t.Fatalf("unknown block not commented: %q", got)
	}
}

func TestAudioIDs(t *testing.T) {
	body := `[{"type":"paragraph","text":"x"},{"type":"audio","audio":5},{"type":"audio","audio":6}]`
	ids := AudioIDs(body)
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 6 {
		t.Fatalf("AudioIDs = %v, want [5 6]", ids)
	}
	if ids := AudioIDs("{broken"); ids != nil {
		t.Fatalf("malformed body should yield no ids, got %v", ids)
	}
}
