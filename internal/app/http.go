package app

import (
	"github.com/gin-gonic/gin"

	"github.com/studyforge/studyforge-backend/internal/http"
	httpH "github.com/studyforge/studyforge-backend/internal/http/handlers"
	"github.com/studyforge/studyforge-backend/internal/observability"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Series  *httpH.SeriesHandler
	Recipe  *httpH.RecipeHandler
	Catalog *httpH.CatalogHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health: httpH.NewHealthHandler(),
		Series: httpH.NewSeriesHandler(log, services.Series),
		Recipe: httpH.NewRecipeHandler(log, services.Recipe),
	}
	if services.Catalog != nil {
		h.Catalog = httpH.NewCatalogHandler(log, services.Catalog)
	}
	return h
}

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		HealthHandler:  handlers.Health,
		SeriesHandler:  handlers.Series,
		RecipeHandler:  handlers.Recipe,
		CatalogHandler: handlers.Catalog,
	})
}
