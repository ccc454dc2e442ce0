// Package pagerepo provides the request-scoped, read-only repository
// variants that rendering code consumes. This file holds the payload
// helpers shared by the variant codecs.
package pagerepo

import (
	"encoding/json"
	"fmt"

	"github.com/dkarlsen/go-blog-cache/internal/repo"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: unmarshal payload: %v", snapshot.ErrSnapshotCorrupt, err)
	}
	return nil
}

func corruptKey(key string) error {
	return fmt.Errorf("%w: required key %q missing", snapshot.ErrSnapshotCorrupt, key)
}

// paramsMap flattens filters to the string map stored under
// filterset.get_params.
func paramsMap(f repo.PostFilters) map[string]string {
	m := map[string]string{}
	if f.Search != "" {
		m["q"] = f.Search
	}
	if f.Month != "" {
		m["month"] = f.Month
	}
	if f.CategorySlug != "" {
		m["category"] = f.CategorySlug
	}
	if f.TagSlug != "" {
		m["tag"] = f.TagSlug
	}
	return m
}

func paramsFromMap(m map[string]string) repo.PostFilters {
	return repo.PostFilters{
		Search:       m["q"],
		Month:        m["month"],
		CategorySlug: m["category"],
		TagSlug:      m["tag"],
	}
}

// emptyNotNil keeps payload lists non-nil so decoded payloads can tell an
// empty list from a missing key.
func emptyNotNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
