package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/feeds"
	"github.com/dkarlsen/go-blog-cache/internal/pagecache"
	"github.com/dkarlsen/go-blog-cache/internal/pagerepo"
	"github.com/dkarlsen/go-blog-cache/internal/repo"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

const rssContentType = "application/rss+xml; charset=utf-8"

// RSS serves GET /:blog/feed.xml, the standard syndication feed.
func (h *Handler) RSS(c *gin.Context) {
	h.serveFeed(c, "rss", feeds.RenderRSS)
}

// Podcast serves GET /:blog/podcast.xml, the podcast feed with
// enclosures, transcripts, and iTunes channel metadata.
func (h *Handler) Podcast(c *gin.Context) {
	h.serveFeed(c, "podcast", feeds.RenderPodcast)
}

func (h *Handler) serveFeed(c *gin.Context, kind string, render func(*pagerepo.Feed) ([]byte, error)) {
	ctx := c.Request.Context()
	blogSlug := c.Param("blog")

	key := pagecache.FeedKey(blogSlug, kind)
	f, err := h.Cache.Feed(ctx, key, func(ctx context.Context) (*pagerepo.Feed, error) {
		return h.buildFeed(ctx, blogSlug)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
			return
		}
		Fail(c, http.StatusInternalServerError, "could not load feed")
		return
	}

	body, err := render(f)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "could not render feed")
		return
	}
	c.Data(http.StatusOK, rssContentType, body)
}

// buildFeed materializes the full visible post list for a blog. Feeds are
// unpaginated; every visible post is included.
func (h *Handler) buildFeed(ctx context.Context, blogSlug string) (*pagerepo.Feed, error) {
	now := time.Now().UTC()

	blog, err := repo.GetBlogBySlug(ctx, h.DB, blogSlug)
	if err != nil {
		return nil, err
	}
	site, err := repo.GetSite(ctx, h.DB, blog.SiteID)
	if err != nil {
		return nil, err
	}
	posts, err := repo.ListVisiblePosts(ctx, h.DB, blog.ID, now)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot.BuildFromPosts(ctx, h.DB, *blog, *site, posts)
	if err != nil {
		return nil, err
	}
	return pagerepo.NewFeed(snap)
}
