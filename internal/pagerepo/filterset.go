// Package pagerepo provides the request-scoped, read-only repository
// variants that rendering code consumes. This file holds the filter and
// facet state of an index page. The facet choice lists travel inside the
// cache payload so a previously selected facet can be re-applied on a
// cache hit without re-querying the store for choices.
package pagerepo

import (
	"github.com/dkarlsen/go-blog-cache/internal/repo"
)

// FacetChoice is one selectable value of a facet with its post count.
type FacetChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Filterset is the complete filter/search/facet state of an index page:
// the active parameters plus the choice lists for each facet dimension.
type Filterset struct {
	Params          repo.PostFilters
	DateChoices     []FacetChoice
	CategoryChoices []FacetChoice
	TagChoices      []FacetChoice
}

// Active reports whether any filter or search term is applied.
func (f Filterset) Active() bool { return !f.Params.IsZero() }

// SelectedDate returns the active date facet choice, resolved from the
// cached choice list.
func (f Filterset) SelectedDate() (FacetChoice, bool) {
	return findChoice(f.DateChoices, f.Params.Month)
}

// SelectedCategory returns the active category facet choice.
func (f Filterset) SelectedCategory() (FacetChoice, bool) {
	return findChoice(f.CategoryChoices, f.Params.CategorySlug)
}

// SelectedTag returns the active tag facet choice.
func (f Filterset) SelectedTag() (FacetChoice, bool) {
	return findChoice(f.TagChoices, f.Params.TagSlug)
}

// QueryString encodes the active parameters for pagination links, e.g.
// "month=2025-06&q=ocean". Empty when no filter is active.
func (f Filterset) QueryString() string {
	return f.Params.QueryString()
}

// NewFilterset assembles the filter state from the active params and the
// facet counts computed by the store.
func NewFilterset(params repo.PostFilters, dates, categories, tags []repo.FacetCount) Filterset {
	return Filterset{
		Params:          params,
		DateChoices:     facetChoices(dates),
		CategoryChoices: facetChoices(categories),
		TagChoices:      facetChoices(tags),
	}
}

func findChoice(choices []FacetChoice, value string) (FacetChoice, bool) {
	if value == "" {
		return FacetChoice{}, false
	}
	for _, c := range choices {
		if c.Value == value {
			return c, true
		}
	}
	return FacetChoice{}, false
}

// facetChoices converts repo facet counts to choices.
func facetChoices(counts []repo.FacetCount) []FacetChoice {
	out := make([]FacetChoice, 0, len(counts))
	for _, c := range counts {
		out = append(out, FacetChoice{Value: c.Value, Label: c.Label, Count: c.Count})
	}
	return out
}
