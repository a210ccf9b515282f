package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/http/response"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/services"
)

type RecipeHandler struct {
	log           *logger.Logger
	recipeService services.RecipeService
}

func NewRecipeHandler(log *logger.Logger, recipeService services.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		log:           log.With("handler", "RecipeHandler"),
		recipeService: recipeService,
	}
}

type recipePreviewRequest struct {
	Filter types.RecipeFilter `json:"filter"`
}

func (h *RecipeHandler) Preview(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	var req recipePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	preview, err := h.recipeService.Preview(c.Request.Context(), seriesID, req.Filter)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, preview)
}
