package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/studyforge/studyforge-backend/internal/http/handlers"
	httpMW "github.com/studyforge/studyforge-backend/internal/http/middleware"
	"github.com/studyforge/studyforge-backend/internal/observability"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	HealthHandler  *httpH.HealthHandler
	SeriesHandler  *httpH.SeriesHandler
	RecipeHandler  *httpH.RecipeHandler
	CatalogHandler *httpH.CatalogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("studyforge"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Series lifecycle
		if cfg.SeriesHandler != nil {
			api.POST("/series", cfg.SeriesHandler.CreateSeries)
			api.GET("/series", cfg.SeriesHandler.ListSeries)
			api.GET("/series/:seriesId", cfg.SeriesHandler.GetSeries)
			api.POST("/series/:seriesId/sessions", cfg.SeriesHandler.StartSession)
			api.POST("/series/:seriesId/sessions/:sessionId/interactions", cfg.SeriesHandler.RecordInteraction)
			api.POST("/series/:seriesId/sessions/:sessionId/complete", cfg.SeriesHandler.CompleteSession)
			api.PUT("/series/:seriesId/sessions/:sessionId", cfg.SeriesHandler.EditSession)
			api.DELETE("/series/:seriesId/sessions/:sessionId", cfg.SeriesHandler.DeleteSession)
			api.GET("/series/:seriesId/sessions/:sessionId/summary", cfg.SeriesHandler.GetSessionSummary)
		}

		// Recipe
		if cfg.RecipeHandler != nil {
			api.POST("/series/:seriesId/recipe/preview", cfg.RecipeHandler.Preview)
		}

		// Catalog
		if cfg.CatalogHandler != nil {
			api.GET("/items", cfg.CatalogHandler.GetItems)
		}
	}

	return r
}
