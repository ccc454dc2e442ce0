// Package repo implements the data access layer over the relational content
// store, backed by GORM. This file provides post listing queries: visibility
// filtering, search/facet filters, pagination, and slug lookups. All listing
// queries order by visible date (newest first) with id as a tiebreaker.
package repo

import (
	"context"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/domain"
)

// PostFilters captures the caller-selected filter state of an index page.
// Zero values mean "not filtered". Month uses the form "2006-01".
type PostFilters struct {
	Search       string
	Month        string
	CategorySlug string
	TagSlug      string
}

// IsZero reports whether no filter is active.
func (f PostFilters) IsZero() bool {
	return f.Search == "" && f.Month == "" && f.CategorySlug == "" && f.TagSlug == ""
}

// QueryString canonically encodes the active filters, e.g.
// "month=2025-06&q=ocean". Empty when no filter is active. Values are
// percent-escaped, so distinct filter states never encode alike.
func (f PostFilters) QueryString() string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.Month != "" {
		v.Set("month", f.Month)
	}
	if f.CategorySlug != "" {
		v.Set("category", f.CategorySlug)
	}
	if f.TagSlug != "" {
		v.Set("tag", f.TagSlug)
	}
	return v.Encode()
}

// applyFilters adds the WHERE/JOIN clauses for the active filters.
func applyFilters(q *gorm.DB, f PostFilters) *gorm.DB {
	if f.Search != "" {
		q = q.Where("posts.title LIKE ?", "%"+f.Search+"%")
	}
	if f.Month != "" {
		q = q.Where("strftime('%Y-%m', posts.visible_date) = ?", f.Month)
	}
	if f.CategorySlug != "" {
		q = q.Joins("JOIN post_categories pc ON pc.post_id = posts.id").
			Joins("JOIN categories c ON c.id = pc.category_id").
			Where("c.slug = ?", f.CategorySlug)
	}
	if f.TagSlug != "" {
		q = q.Joins("JOIN post_tags pt ON pt.post_id = posts.id").
			Joins("JOIN tags t ON t.id = pt.tag_id").
			Where("t.slug = ?", f.TagSlug)
	}
	return q
}

// visibleQuery scopes a query to published posts of one blog.
func visibleQuery(db *gorm.DB, blogID int64, now time.Time) *gorm.DB {
	return db.Model(&domain.Post{}).
		Where("posts.blog_id = ?", blogID).
		Where("posts.visible_date <= ?", now)
}

// GetBlogBySlug fetches a blog by its slug.
func GetBlogBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Blog, error) {
	var b domain.Blog
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetSite fetches a site by id.
func GetSite(ctx context.Context, db *gorm.DB, id int64) (*domain.Site, error) {
	var s domain.Site
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// BlogsForSite returns all blogs of a site ordered by title, used to build
// the root navigation links carried in every snapshot.
func BlogsForSite(ctx context.Context, db *gorm.DB, siteID int64) ([]domain.Blog, error) {
	var out []domain.Blog
	err := db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("title ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountVisiblePosts returns the number of published posts matching the filters.
func CountVisiblePosts(ctx context.Context, db *gorm.DB, blogID int64, f PostFilters, now time.Time) (int64, error) {
	var total int64
	err := applyFilters(visibleQuery(db.WithContext(ctx), blogID, now), f).
		Distinct("posts.id").
		Count(&total).Error
	return total, err
}

// ListVisiblePostsPage returns one page of published posts matching the
// filters, newest first.
func ListVisiblePostsPage(ctx context.Context, db *gorm.DB, blogID int64, f PostFilters, now time.Time, offset, limit int) ([]domain.Post, error) {
	var out []domain.Post
	err := applyFilters(visibleQuery(db.WithContext(ctx), blogID, now), f).
		Select("posts.*").
		Order("posts.visible_date DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListVisiblePosts returns every published post of a blog, newest first.
// Used by the feed path, which is unpaginated.
func ListVisiblePosts(ctx context.Context, db *gorm.DB, blogID int64, now time.Time) ([]domain.Post, error) {
	var out []domain.Post
	err := visibleQuery(db.WithContext(ctx), blogID, now).
		Order("posts.visible_date DESC, posts.id DESC").
		Find(&out).Error
	return out, err
}

// GetVisiblePostBySlug fetches a single published post by slug.
func GetVisiblePostBySlug(ctx context.Context, db *gorm.DB, blogID int64, slug string, now time.Time) (*domain.Post, error) {
	var p domain.Post
	err := visibleQuery(db.WithContext(ctx), blogID, now).
		Where("posts.slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
