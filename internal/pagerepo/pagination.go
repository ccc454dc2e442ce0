// Package pagerepo provides the request-scoped, read-only repository
// variants that rendering code consumes: Detail (single post), Index
// (paginated blog listing), and Feed (unpaginated syndication). Each owns
// one snapshot plus scenario-specific derived state, is created fresh per
// request, and is never mutated after construction.
//
// This file implements the pagination window shown on index pages.
package pagerepo

// GapMarker stands for an elided run of page numbers in Window.Elided.
const GapMarker = -1

// Window describes one page of a paginated listing, including the elided
// page-number range rendered by the pager UI.
type Window struct {
	Page       int
	PageSize   int
	TotalPages int
	Elided     []int
}

// NewWindow computes the window for a page of the given size over total
// items. Page is clamped to [1, TotalPages].
func NewWindow(page, pageSize int, total int64) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Window{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Elided:     elidedRange(page, totalPages, 2, 1),
	}
}

// HasNext reports whether a later page exists.
func (w Window) HasNext() bool { return w.Page < w.TotalPages }

// HasPrevious reports whether an earlier page exists.
func (w Window) HasPrevious() bool { return w.Page > 1 }

// Offset returns the item offset of the window's first item.
func (w Window) Offset() int { return (w.Page - 1) * w.PageSize }

// elidedRange returns the page numbers to display: onEnds pages at each
// end, onEach pages around the current one, and GapMarker where a run of
// pages is skipped.
func elidedRange(current, total, onEach, onEnds int) []int {
	if total <= (onEnds+onEach)*2+3 {
		out := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, p)
		}
		return out
	}

	var out []int
	push := func(p int) {
		if n := len(out); n > 0 && out[n-1] == p {
			return
		}
		out = append(out, p)
	}

	lo, hi := current-onEach, current+onEach
	if lo > onEnds+2 {
		for p := 1; p <= onEnds; p++ {
			push(p)
		}
		out = append(out, GapMarker)
	} else {
		for p := 1; p < lo; p++ {
			push(p)
		}
	}
	for p := max(lo, 1); p <= min(hi, total); p++ {
		push(p)
	}
	if hi < total-onEnds-1 {
		out = append(out, GapMarker)
		for p := total - onEnds + 1; p <= total; p++ {
			push(p)
		}
	} else {
		for p := hi + 1; p <= total; p++ {
			push(p)
		}
	}
	return out
}
