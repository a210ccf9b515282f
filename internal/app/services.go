package app

import (
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/clients/catalog"
	"github.com/studyforge/studyforge-backend/internal/clients/redis"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/services"
)

type Services struct {
	Series  services.SeriesService
	Recipe  services.RecipeService
	Catalog services.CatalogService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos) Services {
	log.Info("Wiring services...")

	// The catalog and its cache are optional collaborators: without them the
	// lifecycle still works, recipe previews just lack metadata enrichment.
	var catalogService services.CatalogService
	client, err := catalog.NewHTTPClient(log)
	if err != nil {
		log.Warn("catalog client unavailable", "error", err)
	} else {
		cache, cacheErr := redis.NewItemCache(log)
		if cacheErr != nil {
			log.Warn("item cache unavailable, using direct catalog lookups", "error", cacheErr)
			cache = nil
		}
		catalogService = services.NewCatalogService(log, client, cache)
	}

	return Services{
		Series:  services.NewSeriesService(db, log, reposet.Series, reposet.Session, reposet.ItemSlot),
		Recipe:  services.NewRecipeService(db, log, reposet.Series, catalogService),
		Catalog: catalogService,
	}
}
