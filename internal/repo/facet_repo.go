// Package repo implements the data access layer over the relational content
// store, backed by GORM. This file computes facet counts (month, category,
// tag) for the blog index filter UI. Facet counts reflect the visibility
// scope but not the facet's own active filter, so the UI can always offer
// switching to a sibling choice.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// FacetCount is one facet choice with its post count. Value is the filter
// value to request (month string or slug), Label the display name.
type FacetCount struct {
	Value string
	Label string
	Count int64
}

// MonthFacetCounts returns per-month post counts, newest month first.
func MonthFacetCounts(ctx context.Context, db *gorm.DB, blogID int64, now time.Time) ([]FacetCount, error) {
	var rows []FacetCount
	err := visibleQuery(db.WithContext(ctx), blogID, now).
		Select("strftime('%Y-%m', posts.visible_date) AS value, strftime('%Y-%m', posts.visible_date) AS label, COUNT(*) AS count").
		Group("value").
		Order("value DESC").
		Scan(&rows).Error
	return rows, err
}

// CategoryFacetCounts returns per-category post counts ordered by name.
func CategoryFacetCounts(ctx context.Context, db *gorm.DB, blogID int64, now time.Time) ([]FacetCount, error) {
	var rows []FacetCount
	err := visibleQuery(db.WithContext(ctx), blogID, now).
		Select("c.slug AS value, c.name AS label, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_categories pc ON pc.post_id = posts.id").
		Joins("JOIN categories c ON c.id = pc.category_id").
		Group("c.slug, c.name").
		Order("c.name ASC").
		Scan(&rows).Error
	return rows, err
}

// TagFacetCounts returns per-tag post counts ordered by name.
func TagFacetCounts(ctx context.Context, db *gorm.DB, blogID int64, now time.Time) ([]FacetCount, error) {
	var rows []FacetCount
	err := visibleQuery(db.WithContext(ctx), blogID, now).
		Select("t.slug AS value, t.name AS label, COUNT(DISTINCT posts.id) AS count").
		Joins("JOIN post_tags pt ON pt.post_id = posts.id").
		Joins("JOIN tags t ON t.id = pt.tag_id").
		Group("t.slug, t.name").
		Order("t.name ASC").
		Scan(&rows).Error
	return rows, err
}
