// Package blocks interprets the structured content payload stored in a
// post's body: a JSON list of typed blocks (paragraphs, headings, images,
// audio, video, internal page links). The payload is treated as opaque by
// the store and the cache; only this package gives it meaning, at render
// time, against data provided by the caller.
//
// The package deliberately knows nothing about the database or the snapshot
// layer. Everything it needs to render (image renditions, media file
// paths, link targets) is supplied through the MediaSource and
// LinkResolver interfaces, so the same renderer works against a live
// query result and against a decoded cache snapshot.
package blocks

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Block is one element of a post body. Type selects which of the other
// fields are meaningful.
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Level int    `json:"level,omitempty"`
	Image int64  `json:"image,omitempty"`
	Spec  string `json:"spec,omitempty"`
	Audio int64  `json:"audio,omitempty"`
	Video int64  `json:"video,omitempty"`
	Page  int64  `json:"page,omitempty"`
}

// Known block types.
const (
	TypeParagraph = "paragraph"
	TypeHeading   = "heading"
	TypeImage     = "image"
	TypeAudio     = "audio"
	TypeVideo     = "video"
	TypeLink      = "link"
)

// Link is a resolved internal page link.
type Link struct {
	URL   string
	Title string
}

// LinkResolver resolves an internal "link to page id" reference to a URL
// and title. Implementations may consult a snapshot's post map or query
// the live store.
type LinkResolver interface {
	ResolvePage(id int64) (Link, bool)
}

// ResolverFunc adapts a function to the LinkResolver interface.
type ResolverFunc func(id int64) (Link, bool)

// ResolvePage calls f.
func (f ResolverFunc) ResolvePage(id int64) (Link, bool) { return f(id) }

// ImageRef is the subset of a rendition needed to emit an <img> tag.
type ImageRef struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

// MediaRef is a playable media source.
type MediaRef struct {
	URL    string
	Poster string
}

// MediaSource supplies media lookups for rendering. A lookup miss renders
// as an HTML comment rather than an error so a stale body never breaks a
// whole page.
type MediaSource interface {
	// ImageRendition returns the rendition of an image for a filter spec.
	ImageRendition(imageID int64, spec string) (ImageRef, bool)
	// AudioSource returns the playable source of an audio file.
	AudioSource(audioID int64) (MediaRef, bool)
	// VideoSource returns the playable source of a video file.
	VideoSource(videoID int64) (MediaRef, bool)
}

// Parse decodes a body payload. An empty body is an empty block list.
func Parse(body string) ([]Block, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var out []Block
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return out, nil
}

// AudioIDs returns the ids of audio blocks embedded in a body. A body that
// fails to parse contributes no ids; the error surfaces at render time.
func AudioIDs(body string) []int64 {
	bs, err := Parse(body)
	if err != nil {
		return nil
	}
	var ids []int64
	for _, b := range bs {
		if b.Type == TypeAudio && b.Audio != 0 {
			ids = append(ids, b.Audio)
		}
	}
	return ids
}

// Render produces the HTML for a body payload. Media and links are
// resolved exclusively through the given source and resolver; Render
// itself performs no I/O.
func Render(body string, media MediaSource, links LinkResolver) (string, error) {
	bs, err := Parse(body)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range bs {
		renderBlock(&sb, b, media, links)
	}
	return sb.String(), nil
}

func renderBlock(sb *strings.Builder, b Block, media MediaSource, links LinkResolver) {
	switch b.Type {
	case TypeParagraph:
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(b.Text))
		sb.WriteString("</p>\n")
	case TypeHeading:
		lvl := b.Level
		if lvl < 1 || lvl > 6 {
			lvl = 2
		}
		fmt.Fprintf(sb, "<h%d>%s</h%d>\n", lvl, html.EscapeString(b.Text), lvl)
	case TypeImage:
		ref, ok := media.ImageRendition(b.Image, b.Spec)
		if !ok {
			fmt.Fprintf(sb, "<!-- missing image %d -->\n", b.Image)
			return
		}
		fmt.Fprintf(sb, "<img src=%q width=\"%d\" height=\"%d\" alt=%q>\n",
			ref.URL, ref.Width, ref.Height, ref.Alt)
	case TypeAudio:
		ref, ok := media.AudioSource(b.Audio)
		if !ok {
			fmt.Fprintf(sb, "<!-- missing audio %d -->\n", b.Audio)
			return
		}
		fmt.Fprintf(sb, "<audio controls src=%q></audio>\n", ref.URL)
	case TypeVideo:
		ref, ok := media.VideoSource(b.Video)
		if !ok {
			fmt.Fprintf(sb, "<!-- missing video %d -->\n", b.Video)
			return
		}
		if ref.Poster != "" {
			fmt.Fprintf(sb, "<video controls src=%q poster=%q></video>\n", ref.URL, ref.Poster)
		} else {
			fmt.Fprintf(sb, "<video controls src=%q></video>\n", ref.URL)
		}
	case TypeLink:
		link, ok := links.ResolvePage(b.Page)
		if !ok {
			// Target unpublished or deleted; degrade to plain text.
			sb.WriteString("<p>")
			sb.WriteString(html.EscapeString(b.Text))
			sb.WriteString("</p>\n")
			return
		}
		text := b.Text
		if text == "" {
			text = link.Title
		}
		fmt.Fprintf(sb, "<p><a href=%q>%s</a></p>\n", link.URL, html.EscapeString(text))
	default:
		fmt.Fprintf(sb, "<!-- unknown block %q -->\n", b.Type)
	}
}
