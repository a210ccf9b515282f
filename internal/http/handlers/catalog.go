package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyforge/studyforge-backend/internal/http/response"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/services"
)

type CatalogHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:            log.With("handler", "CatalogHandler"),
		catalogService: catalogService,
	}
}

// GetItems proxies catalog metadata lookups for the selection UI. ids is a
// comma-separated list of item ids.
func (h *CatalogHandler) GetItems(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		response.RespondOK(c, gin.H{"items": []any{}})
		return
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "validation_error", err)
			return
		}
		ids = append(ids, id)
	}
	items, err := h.catalogService.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		h.log.Error("GetItems failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}
