package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/http/response"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/services"
)

type SeriesHandler struct {
	log           *logger.Logger
	seriesService services.SeriesService
}

func NewSeriesHandler(log *logger.Logger, seriesService services.SeriesService) *SeriesHandler {
	return &SeriesHandler{
		log:           log.With("handler", "SeriesHandler"),
		seriesService: seriesService,
	}
}

func seriesIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("seriesId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return uuid.Nil, false
	}
	return id, true
}

func sessionIDParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("sessionId"))
	if err != nil || n < 1 {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return 0, false
	}
	return n, true
}

type createSeriesRequest struct {
	Title string `json:"title"`
}

func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	var req createSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	series, err := h.seriesService.CreateSeries(c.Request.Context(), req.Title)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, series)
}

func (h *SeriesHandler) ListSeries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	rows, total, err := h.seriesService.ListSeries(c.Request.Context(), limit, skip)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"data": rows,
		"pagination": gin.H{
			"limit": limit,
			"skip":  skip,
			"total": total,
		},
	})
}

func (h *SeriesHandler) GetSeries(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	series, err := h.seriesService.GetSeries(c.Request.Context(), seriesID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, series)
}

type startSessionRequest struct {
	ItemIDs       []int64 `json:"itemIds"`
	GeneratedFrom *int    `json:"generatedFrom"`
}

func (h *SeriesHandler) StartSession(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	sessionID, err := h.seriesService.StartSession(c.Request.Context(), seriesID, req.ItemIDs, req.GeneratedFrom)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sessionId": sessionID})
}

type recordInteractionRequest struct {
	ItemID         int64                 `json:"itemId"`
	Result         string                `json:"result"`
	IsCorrect      *bool                 `json:"isCorrect"`
	Difficulty     string                `json:"difficulty"`
	Confidence     string                `json:"confidence"`
	TimeSpent      int                   `json:"timeSpent"`
	UserGrid       [][]*types.GridCell   `json:"userGrid"`
	ReferenceTable *types.ReferenceTable `json:"referenceTable"`
}

func (h *SeriesHandler) RecordInteraction(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var req recordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	err := h.seriesService.RecordInteraction(c.Request.Context(), seriesID, sessionID, req.ItemID, services.RecordInteractionInput{
		Result:         req.Result,
		IsCorrect:      req.IsCorrect,
		Difficulty:     req.Difficulty,
		Confidence:     req.Confidence,
		TimeSpentSec:   req.TimeSpent,
		UserGrid:       req.UserGrid,
		ReferenceTable: req.ReferenceTable,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"accepted": true})
}

func (h *SeriesHandler) CompleteSession(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	if err := h.seriesService.CompleteSession(c.Request.Context(), seriesID, sessionID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": types.StatusCompleted})
}

type editSessionRequest struct {
	ItemIDs []int64 `json:"itemIds"`
}

func (h *SeriesHandler) EditSession(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var req editSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	newSessionID, err := h.seriesService.EditSession(c.Request.Context(), seriesID, sessionID, req.ItemIDs)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessionId": newSessionID})
}

func (h *SeriesHandler) DeleteSession(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	outcome, err := h.seriesService.DeleteSession(c.Request.Context(), seriesID, sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, outcome)
}

func (h *SeriesHandler) GetSessionSummary(c *gin.Context) {
	seriesID, ok := seriesIDParam(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	summary, err := h.seriesService.GetSessionSummary(c.Request.Context(), seriesID, sessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, summary)
}
