// Package pagecache stores encoded page payloads in a shared key/value
// cache. This file implements the read-through service: cache hit →
// decode a repository, miss or unreachable store → build live, corrupt
// payload → build live and log (it signals schema drift between writer
// and reader versions). No error from the cache ever fails a page render;
// at worst a cache failure costs the queries the cache was meant to save.
package pagecache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/dkarlsen/go-blog-cache/internal/pagerepo"
	"github.com/dkarlsen/go-blog-cache/internal/snapshot"
)

var (
	cacheReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_reads_total",
			Help: "Page cache read outcomes by page kind.",
		},
		[]string{"kind", "outcome"}, // outcome: hit|miss|corrupt|unavailable
	)

	cacheWriteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_cache_write_errors_total",
			Help: "Failed page cache writes by page kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(cacheReads, cacheWriteErrors)
}

// Service serves repositories read-through from a Store. The zero TTL
// stores entries without expiry. A nil *Service disables caching; every
// read builds live.
type Service struct {
	Store Store
	TTL   time.Duration
}

// New returns a read-through service over a store.
func New(store Store, ttl time.Duration) *Service {
	return &Service{Store: store, TTL: ttl}
}

// Index returns the Index repository for key, building it live on any
// cache miss or failure.
func (s *Service) Index(ctx context.Context, key string, build func(context.Context) (*pagerepo.Index, error)) (*pagerepo.Index, error) {
	return getOrBuild(s, ctx, key, "index", pagerepo.DecodeIndex, pagerepo.EncodeIndex, build)
}

// Detail returns the Detail repository for key, building it live on any
// cache miss or failure.
func (s *Service) Detail(ctx context.Context, key string, build func(context.Context) (*pagerepo.Detail, error)) (*pagerepo.Detail, error) {
	return getOrBuild(s, ctx, key, "detail", pagerepo.DecodeDetail, pagerepo.EncodeDetail, build)
}

// Feed returns the Feed repository for key, building it live on any
// cache miss or failure.
func (s *Service) Feed(ctx context.Context, key string, build func(context.Context) (*pagerepo.Feed, error)) (*pagerepo.Feed, error) {
	return getOrBuild(s, ctx, key, "feed", pagerepo.DecodeFeed, pagerepo.EncodeFeed, build)
}

// Invalidate drops a cached page, e.g. after a post is republished.
func (s *Service) Invalidate(ctx context.Context, key string) {
	if s == nil {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("page cache delete failed")
	}
}

// getOrBuild is the shared read-through path. Duplicate concurrent builds
// for the same key are acceptable; writes are whole-payload replacements,
// so the last writer wins.
func getOrBuild[T any](
	s *Service,
	ctx context.Context,
	key, kind string,
	decode func([]byte) (T, error),
	encode func(T) ([]byte, error),
	build func(context.Context) (T, error),
) (T, error) {
	var zero T

	if s == nil {
		return build(ctx)
	}

	data, err := s.Store.Get(ctx, key)
	switch {
	case err == nil:
		out, derr := decode(data)
		if derr == nil {
			cacheReads.WithLabelValues(kind, "hit").Inc()
			return out, nil
		}
		if errors.Is(derr, snapshot.ErrSnapshotCorrupt) {
			cacheReads.WithLabelValues(kind, "corrupt").Inc()
			log.Ctx(ctx).Warn().Err(derr).Str("key", key).
				Msg("corrupt page cache payload, rebuilding live")
		} else {
			return zero, derr
		}
	case errors.Is(err, ErrCacheMiss):
		cacheReads.WithLabelValues(kind, "miss").Inc()
	case errors.Is(err, ErrCacheUnavailable):
		cacheReads.WithLabelValues(kind, "unavailable").Inc()
		log.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("page cache unreachable")
	default:
		cacheReads.WithLabelValues(kind, "unavailable").Inc()
		log.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("page cache read failed")
	}

	out, err := build(ctx)
	if err != nil {
		return zero, err
	}

	if data, err := encode(out); err == nil {
		if err := s.Store.Set(ctx, key, data, s.TTL); err != nil {
			cacheWriteErrors.WithLabelValues(kind).Inc()
			log.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("page cache write failed")
		}
	} else {
		cacheWriteErrors.WithLabelValues(kind).Inc()
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("page payload encode failed")
	}
	return out, nil
}
