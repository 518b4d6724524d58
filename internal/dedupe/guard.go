// Package dedupe decides whether a detail page still needs ingesting.
package dedupe

import (
	"context"

	"go.uber.org/zap"
)

// ExistenceChecker answers whether an audiobook path is already in the graph.
type ExistenceChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// SeenCache is an optional fast path in front of the graph.
type SeenCache interface {
	Seen(ctx context.Context, path string) (bool, error)
	Mark(ctx context.Context, path string) (bool, error)
}

// Guard checks the graph for existing audiobooks. The graph's unique path
// constraint stays authoritative; the cache only remembers positives.
//
// Callers must pass the canonical path as emitted by the listing page, the
// same value the graph store keys audiobooks by.
type Guard struct {
	graph  ExistenceChecker
	cache  SeenCache
	logger *zap.Logger
}

// NewGuard builds a Guard. cache may be nil.
func NewGuard(graph ExistenceChecker, cache SeenCache, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{graph: graph, cache: cache, logger: logger}
}

// Exists reports whether path has already been ingested.
func (g *Guard) Exists(ctx context.Context, path string) (bool, error) {
	if g.cache != nil {
		seen, err := g.cache.Seen(ctx, path)
		if err != nil {
			g.logger.Warn("dedupe cache lookup failed", zap.String("path", path), zap.Error(err))
		} else if seen {
			return true, nil
		}
	}

	exists, err := g.graph.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	if exists {
		g.remember(ctx, path)
	}
	return exists, nil
}

// MarkIngested records a successful persist in the cache.
func (g *Guard) MarkIngested(ctx context.Context, path string) {
	g.remember(ctx, path)
}

func (g *Guard) remember(ctx context.Context, path string) {
	if g.cache == nil {
		return
	}
	if _, err := g.cache.Mark(ctx, path); err != nil {
		g.logger.Warn("dedupe cache mark failed", zap.String("path", path), zap.Error(err))
	}
}
