// Package feeds renders syndication feeds (RSS, podcast RSS) from a Feed
// repository. The generators read everything (post records, absolute
// URLs, episode audio, transcripts) from the repository and never touch
// the store. The repository's post collection is taken exactly once up
// front, so the XML assembly below can walk it as often as it likes.
package feeds

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/dkarlsen/go-blog-cache/internal/blocks"
	"github.com/dkarlsen/go-blog-cache/internal/pagerepo"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

const (
	itunesNS  = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	podcastNS = "https://podcastindex.org/namespace/1.0"
)

type rssDoc struct {
	XMLName   xml.Name `xml:"rss"`
	Version   string   `xml:"version,attr"`
	ItunesNS  string   `xml:"xmlns:itunes,attr,omitempty"`
	PodcastNS string   `xml:"xmlns:podcast,attr,omitempty"`
	Channel   rssChannel
}

type rssChannel struct {
	XMLName     xml.Name `xml:"channel"`
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Language    string   `xml:"language,omitempty"`
	Author      string   `xml:"itunes:author,omitempty"`
	Explicit    string   `xml:"itunes:explicit,omitempty"`
	Owner       *rssOwner
	Items       []rssItem
}

type rssOwner struct {
	XMLName xml.Name `xml:"itunes:owner"`
	Name    string   `xml:"itunes:name"`
	Email   string   `xml:"itunes:email"`
}

type rssItem struct {
	XMLName     xml.Name `xml:"item"`
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	Description string   `xml:"description,omitempty"`
	PubDate     string   `xml:"pubDate"`
	Author      string   `xml:"author,omitempty"`
	Enclosure   *rssEnclosure
	Duration    string `xml:"itunes:duration,omitempty"`
	Explicit    string `xml:"itunes:explicit,omitempty"`
	Keywords    string `xml:"itunes:keywords,omitempty"`
	Block       string `xml:"itunes:block,omitempty"`
	Transcript  *rssTranscript
}

type rssEnclosure struct {
	XMLName xml.Name `xml:"enclosure"`
	URL     string   `xml:"url,attr"`
	Type    string   `xml:"type,attr"`
}

type rssTranscript struct {
	XMLName xml.Name `xml:"podcast:transcript"`
	URL     string   `xml:"url,attr"`
	Type    string   `xml:"type,attr"`
}

// RenderRSS renders the plain blog RSS feed.
func RenderRSS(f *pagerepo.Feed) ([]byte, error) {
	blog := f.Blog()
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       blog.Title,
			Link:        siteLink(f),
			Description: blog.Description,
			Language:    feedLanguage(blog.Language),
		},
	}
	for _, rec := range f.Posts() {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       rec.Title(),
			Link:        f.AbsoluteURL(rec.ID()),
			GUID:        f.AbsoluteURL(rec.ID()),
			Description: summarize(rec),
			PubDate:     rec.VisibleDate().UTC().Format(time.RFC1123Z),
			Author:      f.OwnerName(rec.ID()),
		})
	}
	return marshalFeed(doc)
}

// RenderPodcast renders the podcast RSS feed with iTunes and podcast-index
// extensions. Episodes without attached audio are skipped; episodes with
// the block flag are emitted with itunes:block so directories drop them.
func RenderPodcast(f *pagerepo.Feed) ([]byte, error) {
	blog := f.Blog()
	doc := rssDoc{
		Version:   "2.0",
		ItunesNS:  itunesNS,
		PodcastNS: podcastNS,
		Channel: rssChannel{
			Title:       blog.Title,
			Link:        siteLink(f),
			Description: blog.Description,
			Language:    feedLanguage(blog.Language),
			Author:      blog.AuthorName,
			Explicit:    yesNo(blog.Explicit),
		},
	}
	if blog.OwnerEmail != "" {
		doc.Channel.Owner = &rssOwner{Name: blog.AuthorName, Email: blog.OwnerEmail}
	}
	for _, rec := range f.Posts() {
		audio, ok := f.EpisodeAudio(rec.ID())
		if !ok {
			continue
		}
		it := rssItem{
			Title:       rec.Title(),
			Link:        f.AbsoluteURL(rec.ID()),
			GUID:        f.AbsoluteURL(rec.ID()),
			Description: summarize(rec),
			PubDate:     rec.VisibleDate().UTC().Format(time.RFC1123Z),
			Author:      f.OwnerName(rec.ID()),
			Enclosure:   &rssEnclosure{URL: absoluteMediaURL(f, audio.FilePath), Type: "audio/mp4"},
			Duration:    formatDuration(audio.Duration),
			Explicit:    yesNo(rec.Explicit()),
			Keywords:    rec.Keywords(),
		}
		if rec.Blocked() {
			it.Block = "Yes"
		}
		if t, ok := f.Transcript(rec.ID()); ok {
			it.Transcript = &rssTranscript{URL: absoluteMediaURL(f, t.FilePath), Type: t.Format}
		}
		doc.Channel.Items = append(doc.Channel.Items, it)
	}
	return marshalFeed(doc)
}

func marshalFeed(doc rssDoc) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func siteLink(f *pagerepo.Feed) string {
	return strings.TrimRight(f.Site().RootURL, "/") + "/" + f.Blog().Slug + "/"
}

func absoluteMediaURL(f *pagerepo.Feed, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(f.Site().RootURL, "/") + "/media/" + path
}

// feedLanguage validates the blog language as a BCP 47 tag, defaulting to
// "en" for anything unparsable.
func feedLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil || tag == language.Und {
		return "en"
	}
	return tag.String()
}

// summarize extracts the first paragraph of a post body as the item
// description. An unparsable body yields an empty description rather than
// a broken feed.
func summarize(rec snapshot.Record) string {
	bs, err := blocks.Parse(rec.Body())
	if err != nil {
		return ""
	}
	for _, b := range bs {
		if b.Type == blocks.TypeParagraph && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
