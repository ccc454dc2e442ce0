// Package pagerepo provides the request-scoped, read-only repository
// variants that rendering code consumes. This file implements the Index
// repository: one page of a blog listing with its filter, facet, and
// pagination state. The post collection is single-use; a second iteration
// returns nothing rather than risking a different page of contents.
package pagerepo

import (
	"github.com/dkarlsen/go-blog-cache/internal/blocks"
	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

// Index exposes exactly the data the blog listing template needs.
type Index struct {
	snap      *snapshot.Snapshot
	filterset Filterset
	window    Window
	used      bool
}

// indexPayload is the cache form of an Index: the snapshot payload plus
// the filterset and pagination keys.
type indexPayload struct {
	snapshot.Payload
	Filterset         *filtersetPayload  `json:"filterset"`
	PaginationContext *paginationPayload `json:"pagination_context"`
}

type filtersetPayload struct {
	GetParams       map[string]string `json:"get_params"`
	DateChoices     []FacetChoice     `json:"date_choices"`
	CategoryChoices []FacetChoice     `json:"category_choices"`
	TagChoices      []FacetChoice     `json:"tag_choices"`
}

type paginationPayload struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	Elided      []int `json:"elided_range"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewIndex wraps a snapshot of one listing page with its filter and
// pagination state.
func NewIndex(snap *snapshot.Snapshot, fs Filterset, w Window) (*Index, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &Index{snap: snap, filterset: fs, window: w}, nil
}

// EncodeIndex flattens an Index repository for the cache store.
func EncodeIndex(ix *Index) ([]byte, error) {
	p := indexPayload{
		Payload: *snapshot.Encode(ix.snap),
		Filterset: &filtersetPayload{
			GetParams:       paramsMap(ix.filterset.Params),
			DateChoices:     emptyNotNil(ix.filterset.DateChoices),
			CategoryChoices: emptyNotNil(ix.filterset.CategoryChoices),
			TagChoices:      emptyNotNil(ix.filterset.TagChoices),
		},
		PaginationContext: &paginationPayload{
			Page:        ix.window.Page,
			PageSize:    ix.window.PageSize,
			TotalPages:  ix.window.TotalPages,
			Elided:      emptyNotNil(ix.window.Elided),
			HasNext:     ix.window.HasNext(),
			HasPrevious: ix.window.HasPrevious(),
		},
	}
	return marshalJSON(p)
}

// DecodeIndex reconstructs an Index repository from a cache payload. The
// filter object behaves exactly as on the live path: the previously chosen
// facet re-applies against the cached choice lists, with no store access.
func DecodeIndex(data []byte) (*Index, error) {
	var p indexPayload
	if err := unmarshalJSON(data, &p); err != nil {
		return nil, err
	}
	snap, err := snapshot.Decode(&p.Payload)
	if err != nil {
		return nil, err
	}
	if p.Filterset == nil {
		return nil, corruptKey("filterset")
	}
	if p.PaginationContext == nil {
		return nil, corruptKey("pagination_context")
	}
	fs := Filterset{
		Params:          paramsFromMap(p.Filterset.GetParams),
		DateChoices:     p.Filterset.DateChoices,
		CategoryChoices: p.Filterset.CategoryChoices,
		TagChoices:      p.Filterset.TagChoices,
	}
	w := Window{
		Page:       p.PaginationContext.Page,
		PageSize:   p.PaginationContext.PageSize,
		TotalPages: p.PaginationContext.TotalPages,
		Elided:     p.PaginationContext.Elided,
	}
	return NewIndex(snap, fs, w)
}

// Posts returns the page's post collection in listing order. The first
// call consumes the repository; later calls return nothing.
func (ix *Index) Posts() []snapshot.Record {
	if ix.used {
		return nil
	}
	ix.used = true
	return ix.snap.Posts()
}

// Used reports whether the post collection has been consumed.
func (ix *Index) Used() bool { return ix.used }

// Blog returns the listed blog.
func (ix *Index) Blog() domain.Blog { return ix.snap.Blog }

// Theme returns the template theme directory for this page.
func (ix *Index) Theme() string { return ix.snap.TemplateBaseDir }

// Filterset returns the active filter and facet state.
func (ix *Index) Filterset() Filterset { return ix.filterset }

// Window returns the pagination window.
func (ix *Index) Window() Window { return ix.window }

// PageHasAudio reports whether any post on this page has audio, which
// decides whether the listing template loads the audio player widget.
func (ix *Index) PageHasAudio() bool {
	for _, id := range ix.snap.PostIDs {
		if ix.snap.HasAudioByPostID[id] {
			return true
		}
	}
	return false
}

// NavLinks returns the site's root navigation.
func (ix *Index) NavLinks() []snapshot.NavLink { return ix.snap.RootNavLinks }

// OwnerName returns a post's author display name.
func (ix *Index) OwnerName(postID int64) string { return ix.snap.OwnerNameByPostID[postID] }

// PageURL returns a post's site-relative URL.
func (ix *Index) PageURL(postID int64) string { return ix.snap.PageURLByPostID[postID] }

// Cover returns a post's cover image URL and alt text.
func (ix *Index) Cover(postID int64) (url, alt string) {
	return ix.snap.CoverURLByPostID[postID], ix.snap.CoverAltByPostID[postID]
}

// HasAudio reports whether a post has audio.
func (ix *Index) HasAudio(postID int64) bool { return ix.snap.HasAudioByPostID[postID] }

// BodyHTML renders a post body for teaser display.
func (ix *Index) BodyHTML(postID int64, fallback blocks.LinkResolver) (string, error) {
	rec, ok := ix.snap.PostByID[postID]
	if !ok {
		return "", nil
	}
	return blocks.Render(rec.Body(), ix.snap, ix.snap.Resolver(fallback))
}
