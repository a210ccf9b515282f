package services

import (
	"context"
	"sort"
	"time"

	"github.com/studyforge/studyforge-backend/internal/clients/catalog"
	"github.com/studyforge/studyforge-backend/internal/clients/redis"
	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/observability"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

// CatalogService fronts the external item catalog with an optional
// read-through cache. All lookups are by id; the catalog is never written.
type CatalogService interface {
	GetByIDs(ctx context.Context, ids []int64) ([]types.ItemMetadata, error)
	FilterOptions(ctx context.Context, ids []int64) (*types.FilterOptions, error)
}

type catalogService struct {
	log    *logger.Logger
	client catalog.Client
	cache  redis.ItemCache
}

// NewCatalogService wires the catalog client with an optional cache; a nil
// cache degrades to direct lookups.
func NewCatalogService(baseLog *logger.Logger, client catalog.Client, cache redis.ItemCache) CatalogService {
	return &catalogService{
		log:    baseLog.With("service", "CatalogService"),
		client: client,
		cache:  cache,
	}
}

func (s *catalogService) GetByIDs(ctx context.Context, ids []int64) ([]types.ItemMetadata, error) {
	if len(ids) == 0 {
		return []types.ItemMetadata{}, nil
	}
	ids = dedupeIDs(ids)

	if s.cache == nil {
		return s.fetch(ctx, ids)
	}

	found, missing, err := s.cache.Get(ctx, ids)
	if err != nil {
		// Cache trouble never fails the lookup.
		s.log.Warn("cache read failed, falling back to catalog", "error", err)
		observeCatalogCache("error")
		return s.fetch(ctx, ids)
	}
	if len(found) > 0 {
		observeCatalogCache("hit")
	}
	if len(missing) == 0 {
		return found, nil
	}
	observeCatalogCache("miss")

	fetched, err := s.fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, fetched); err != nil {
		s.log.Warn("cache write failed", "error", err)
	}
	return append(found, fetched...), nil
}

func (s *catalogService) fetch(ctx context.Context, ids []int64) ([]types.ItemMetadata, error) {
	start := time.Now()
	items, err := s.client.GetByIDs(ctx, ids)
	if m := observability.Current(); m != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.ObserveCatalogRequest(status, time.Since(start))
	}
	return items, err
}

func observeCatalogCache(outcome string) {
	if m := observability.Current(); m != nil {
		m.IncCatalogCache(outcome)
	}
}

func (s *catalogService) FilterOptions(ctx context.Context, ids []int64) (*types.FilterOptions, error) {
	items, err := s.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return BuildFilterOptions(items), nil
}

// BuildFilterOptions collects the distinct subject/chapter/section values of a
// set of items, sorted for stable output.
func BuildFilterOptions(items []types.ItemMetadata) *types.FilterOptions {
	subjects := map[string]bool{}
	chapters := map[string]bool{}
	sections := map[string]bool{}
	for _, item := range items {
		if item.Subject != "" {
			subjects[item.Subject] = true
		}
		if item.Chapter != "" {
			chapters[item.Chapter] = true
		}
		if item.Section != "" {
			sections[item.Section] = true
		}
	}
	return &types.FilterOptions{
		Subjects: sortedKeys(subjects),
		Chapters: sortedKeys(chapters),
		Sections: sortedKeys(sections),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
