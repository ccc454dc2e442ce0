// Package pagecache stores encoded page payloads in a shared key/value
// cache. This file builds the cache keys. A key identifies one rendered
// page variant: blog, scenario, and (for index pages) pagination and
// filter state.
package pagecache

import (
	"fmt"

	"github.com/dkarlsen/go-blog-cache/internal/repo"
)

// IndexKey returns the cache key of one listing page, including the
// filter state so filtered views never collide with the plain listing.
// Filters use their canonical percent-escaped encoding; raw values could
// alias two distinct filter states onto one key.
func IndexKey(blogSlug string, page int, f repo.PostFilters) string {
	key := fmt.Sprintf("page:index:%s:%d", blogSlug, page)
	if !f.IsZero() {
		key += ":" + f.QueryString()
	}
	return key
}

// DetailKey returns the cache key of a single-post page.
func DetailKey(blogSlug, postSlug string) string {
	return fmt.Sprintf("page:detail:%s:%s", blogSlug, postSlug)
}

// FeedKey returns the cache key of a feed. Kind distinguishes feed
// flavors of the same blog ("rss", "podcast").
func FeedKey(blogSlug, kind string) string {
	return fmt.Sprintf("page:feed:%s:%s", blogSlug, kind)
}
