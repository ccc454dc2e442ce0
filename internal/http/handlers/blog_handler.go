// Package handlers implements the page endpoints. This file serves the
// blog index (paginated, filterable listing) and the post detail page.
// Both go through the page cache read-through service: the build closures
// below run only on a cache miss; on a hit the repository is decoded from
// the cached payload and rendering issues no store queries.
package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
	"github.com/dkarlsen/go-blog-cache/internal/http/middleware"
	"github.com/dkarlsen/go-blog-cache/internal/pagecache"
	"github.com/dkarlsen/go-blog-cache/internal/pagerepo"
	"github.com/dkarlsen/go-blog-cache/internal/repo"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

const dateFormat = "Jan 2, 2006"

// Handler carries the dependencies of all page endpoints.
type Handler struct {
	DB       *gorm.DB
	Cache    *pagecache.Service
	PageSize int
}

// New constructs the page handler set.
func New(db *gorm.DB, cache *pagecache.Service, pageSize int) *Handler {
	return &Handler{DB: db, Cache: cache, PageSize: pageSize}
}

// filtersFromQuery reads the index filter state from the query string.
func filtersFromQuery(c *gin.Context) repo.PostFilters {
	return repo.PostFilters{
		Search:       c.Query("q"),
		Month:        c.Query("month"),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
	}
}

// Index serves GET /:blog/ with one page of the blog listing.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	blogSlug := c.Param("blog")
	filters := filtersFromQuery(c)
	page := pageParam(c)

	key := pagecache.IndexKey(blogSlug, page, filters)
	ix, err := h.Cache.Index(ctx, key, func(ctx context.Context) (*pagerepo.Index, error) {
		return h.buildIndex(ctx, blogSlug, filters, page)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
			return
		}
		Fail(c, http.StatusInternalServerError, "could not load page")
		return
	}
	h.renderIndex(c, ix)
}

// buildIndex is the live path: query, paginate, facet, materialize.
func (h *Handler) buildIndex(ctx context.Context, blogSlug string, filters repo.PostFilters, page int) (*pagerepo.Index, error) {
	now := time.Now().UTC()

	blog, err := repo.GetBlogBySlug(ctx, h.DB, blogSlug)
	if err != nil {
		return nil, err
	}
	site, err := repo.GetSite(ctx, h.DB, blog.SiteID)
	if err != nil {
		return nil, err
	}

	total, err := repo.CountVisiblePosts(ctx, h.DB, blog.ID, filters, now)
	if err != nil {
		return nil, err
	}
	w := pagerepo.NewWindow(page, h.PageSize, total)

	posts, err := repo.ListVisiblePostsPage(ctx, h.DB, blog.ID, filters, now, w.Offset(), w.PageSize)
	if err != nil {
		return nil, err
	}

	months, err := repo.MonthFacetCounts(ctx, h.DB, blog.ID, now)
	if err != nil {
		return nil, err
	}
	categories, err := repo.CategoryFacetCounts(ctx, h.DB, blog.ID, now)
	if err != nil {
		return nil, err
	}
	tags, err := repo.TagFacetCounts(ctx, h.DB, blog.ID, now)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.BuildFromPosts(ctx, h.DB, *blog, *site, posts)
	if err != nil {
		return nil, err
	}
	return pagerepo.NewIndex(snap, pagerepo.NewFilterset(filters, months, categories, tags), w)
}

type indexPost struct {
	Title    string
	URL      string
	Owner    string
	Date     string
	CoverURL string
	CoverAlt string
	BodyHTML template.HTML
}

type indexData struct {
	Blog         domain.Blog
	Theme        string
	NavLinks     []snapshot.NavLink
	Filter       string
	Posts        []indexPost
	PageHasAudio bool
	Pager        []string
	Months       []pagerepo.FacetChoice
	Categories   []pagerepo.FacetChoice
	Tags         []pagerepo.FacetChoice
}

func (h *Handler) renderIndex(c *gin.Context, ix *pagerepo.Index) {
	resolver := snapshot.NewLiveResolver(c.Request.Context(), h.DB)

	data := indexData{
		Blog:         ix.Blog(),
		Theme:        ix.Theme(),
		NavLinks:     ix.NavLinks(),
		Filter:       filterDescription(ix.Filterset()),
		PageHasAudio: ix.PageHasAudio(),
		Pager:        pagerLabels(ix.Window()),
		Months:       ix.Filterset().DateChoices,
		Categories:   ix.Filterset().CategoryChoices,
		Tags:         ix.Filterset().TagChoices,
	}
	for _, rec := range ix.Posts() {
		body, err := ix.BodyHTML(rec.ID(), resolver)
		if err != nil {
			Fail(c, http.StatusInternalServerError, "could not render page")
			return
		}
		coverURL, coverAlt := ix.Cover(rec.ID())
		data.Posts = append(data.Posts, indexPost{
			Title:    rec.Title(),
			URL:      ix.PageURL(rec.ID()),
			Owner:    ix.OwnerName(rec.ID()),
			Date:     rec.VisibleDate().Format(dateFormat),
			CoverURL: coverURL,
			CoverAlt: coverAlt,
			BodyHTML: template.HTML(body),
		})
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(c.Writer, "index", data); err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("template execution failed")
	}
}

type detailData struct {
	Blog            domain.Blog
	Theme           string
	NavLinks        []snapshot.NavLink
	Title           string
	Owner           string
	Date            string
	AbsoluteURL     string
	CoverURL        string
	CoverAlt        string
	BodyHTML        template.HTML
	HasAudio        bool
	CommentsEnabled bool
}

// Detail serves GET /:blog/:slug/, the single-post page.
func (h *Handler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	blogSlug := c.Param("blog")
	postSlug := c.Param("slug")

	key := pagecache.DetailKey(blogSlug, postSlug)
	d, err := h.Cache.Detail(ctx, key, func(ctx context.Context) (*pagerepo.Detail, error) {
		return h.buildDetail(ctx, blogSlug, postSlug)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
			return
		}
		Fail(c, http.StatusInternalServerError, "could not load page")
		return
	}

	body, err := d.BodyHTML(snapshot.NewLiveResolver(ctx, h.DB))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "could not render page")
		return
	}
	coverURL, coverAlt := d.Cover()
	data := detailData{
		Blog:            d.Blog(),
		Theme:           d.Theme(),
		NavLinks:        d.NavLinks(),
		Title:           d.Post().Title(),
		Owner:           d.OwnerName(),
		Date:            d.Post().VisibleDate().Format(dateFormat),
		AbsoluteURL:     d.AbsolutePageURL(),
		CoverURL:        coverURL,
		CoverAlt:        coverAlt,
		BodyHTML:        template.HTML(body),
		HasAudio:        d.HasAudio(),
		CommentsEnabled: d.CommentsEnabled(),
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(c.Writer, "detail", data); err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("template execution failed")
	}
}

// buildDetail is the live path for a single post page.
func (h *Handler) buildDetail(ctx context.Context, blogSlug, postSlug string) (*pagerepo.Detail, error) {
	now := time.Now().UTC()

	blog, err := repo.GetBlogBySlug(ctx, h.DB, blogSlug)
	if err != nil {
		return nil, err
	}
	site, err := repo.GetSite(ctx, h.DB, blog.SiteID)
	if err != nil {
		return nil, err
	}
	post, err := repo.GetVisiblePostBySlug(ctx, h.DB, blog.ID, postSlug, now)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.BuildFromPosts(ctx, h.DB, *blog, *site, []domain.Post{*post})
	if err != nil {
		return nil, err
	}
	return pagerepo.NewDetail(snap)
}

// filterDescription summarizes the active filters for display.
func filterDescription(fs pagerepo.Filterset) string {
	if !fs.Active() {
		return ""
	}
	var parts []string
	if fs.Params.Search != "" {
		parts = append(parts, "search: "+fs.Params.Search)
	}
	if c, ok := fs.SelectedDate(); ok {
		parts = append(parts, "month: "+c.Label)
	}
	if c, ok := fs.SelectedCategory(); ok {
		parts = append(parts, "category: "+c.Label)
	}
	if c, ok := fs.SelectedTag(); ok {
		parts = append(parts, "tag: "+c.Label)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// pagerLabels converts the pagination window to display labels, using an
// ellipsis for elided runs.
func pagerLabels(w pagerepo.Window) []string {
	out := make([]string, 0, len(w.Elided))
	for _, p := range w.Elided {
		if p == pagerepo.GapMarker {
			out = append(out, "…")
			continue
		}
		out = append(out, strconv.Itoa(p))
	}
	return out
}
