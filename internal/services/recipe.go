package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/data/repos"
	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/dbctx"
	pkgerrors "github.com/studyforge/studyforge-backend/internal/pkg/errors"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/platform/apierr"
)

// BuildRecipeCandidates flattens every slot carrying an interaction across the
// given sessions and keeps, per item, the interaction from the numerically
// largest sessionId. Ties cannot occur because session ids are unique within a
// series. Pure: same history in, same candidates out.
func BuildRecipeCandidates(sessions []*types.StudySession) ([]types.RecipeCandidate, error) {
	latest := make(map[int64]types.RecipeCandidate)
	for _, sess := range sessions {
		if sess == nil {
			continue
		}
		for i := range sess.Items {
			slot := &sess.Items[i]
			in, err := slot.InteractionValue()
			if err != nil {
				return nil, fmt.Errorf("decode interaction for item %d in session %d: %w", slot.ItemID, sess.SessionID, err)
			}
			if in == nil {
				continue
			}
			prev, seen := latest[slot.ItemID]
			if seen && prev.SourceSessionID >= sess.SessionID {
				continue
			}
			latest[slot.ItemID] = types.RecipeCandidate{
				ItemID:           slot.ItemID,
				LatestResult:     in.Result,
				LatestDifficulty: in.Difficulty,
				LatestConfidence: in.Confidence,
				LatestTimeSpent:  in.TimeSpentSec,
				SourceSessionID:  sess.SessionID,
			}
		}
	}

	out := make([]types.RecipeCandidate, 0, len(latest))
	for _, cand := range latest {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// FilterRecipeCandidates applies set-membership predicates. An empty set for a
// dimension means that dimension is unconstrained.
func FilterRecipeCandidates(candidates []types.RecipeCandidate, filter types.RecipeFilter) []types.RecipeCandidate {
	out := make([]types.RecipeCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if !memberOf(filter.Results, cand.LatestResult) {
			continue
		}
		if !memberOf(filter.Difficulties, cand.LatestDifficulty) {
			continue
		}
		if !memberOf(filter.Confidences, cand.LatestConfidence) {
			continue
		}
		if !inTimeBucket(filter.TimeSpent, cand.LatestTimeSpent) {
			continue
		}
		out = append(out, cand)
	}
	return out
}

func memberOf(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func inTimeBucket(bucket string, seconds int) bool {
	switch bucket {
	case "", types.TimeBucketAny:
		return true
	case types.TimeBucketFast:
		return seconds < 30
	case types.TimeBucketMedium:
		return seconds >= 30 && seconds < 90
	case types.TimeBucketSlow:
		return seconds >= 90
	}
	return false
}

// ValidateRecipeFilter rejects unknown attribute values before any work runs.
func ValidateRecipeFilter(filter types.RecipeFilter) error {
	for _, v := range filter.Results {
		if !types.ValidResult(v) {
			return recipeValidationErr(fmt.Sprintf("unknown result %q", v))
		}
	}
	for _, v := range filter.Difficulties {
		if !types.ValidDifficulty(v) {
			return recipeValidationErr(fmt.Sprintf("unknown difficulty %q", v))
		}
	}
	for _, v := range filter.Confidences {
		if !types.ValidConfidence(v) {
			return recipeValidationErr(fmt.Sprintf("unknown confidence %q", v))
		}
	}
	if !types.ValidTimeBucket(filter.TimeSpent) {
		return recipeValidationErr(fmt.Sprintf("unknown time bucket %q", filter.TimeSpent))
	}
	return nil
}

func recipeValidationErr(msg string) error {
	return apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("%s: %w", msg, pkgerrors.ErrInvalidArgument))
}

// RecipePreview is the boundary payload for the selection UI: filtered
// candidates enriched with catalog attributes, plus the option sets the filter
// panel offers.
type RecipePreview struct {
	Candidates []RecipePreviewCandidate `json:"candidates"`
	Options    *types.FilterOptions     `json:"options"`
}

type RecipePreviewCandidate struct {
	types.RecipeCandidate
	Subject string `json:"subject,omitempty"`
	Chapter string `json:"chapter,omitempty"`
	Section string `json:"section,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type RecipeService interface {
	Preview(ctx context.Context, seriesID uuid.UUID, filter types.RecipeFilter) (*RecipePreview, error)
}

type recipeService struct {
	db         *gorm.DB
	log        *logger.Logger
	seriesRepo repos.SeriesRepo
	catalog    CatalogService
}

func NewRecipeService(db *gorm.DB, baseLog *logger.Logger, seriesRepo repos.SeriesRepo, catalog CatalogService) RecipeService {
	return &recipeService{
		db:         db,
		log:        baseLog.With("service", "RecipeService"),
		seriesRepo: seriesRepo,
		catalog:    catalog,
	}
}

func (s *recipeService) Preview(ctx context.Context, seriesID uuid.UUID, filter types.RecipeFilter) (*RecipePreview, error) {
	if err := ValidateRecipeFilter(filter); err != nil {
		return nil, err
	}

	series, err := s.seriesRepo.GetByID(dbctx.Context{Ctx: ctx}, seriesID)
	if err != nil {
		s.log.Error("Preview: load series failed", "error", err, "series_id", seriesID)
		return nil, err
	}
	if series == nil {
		return nil, apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("series does not exist: %w", pkgerrors.ErrNotFound))
	}

	sessions := make([]*types.StudySession, 0, len(series.Sessions))
	for i := range series.Sessions {
		sessions = append(sessions, &series.Sessions[i])
	}
	candidates, err := BuildRecipeCandidates(sessions)
	if err != nil {
		s.log.Error("Preview: build candidates failed", "error", err, "series_id", seriesID)
		return nil, err
	}
	filtered := FilterRecipeCandidates(candidates, filter)

	preview := &RecipePreview{Candidates: make([]RecipePreviewCandidate, 0, len(filtered))}
	ids := make([]int64, 0, len(filtered))
	for _, cand := range filtered {
		ids = append(ids, cand.ItemID)
	}

	var byID map[int64]types.ItemMetadata
	if s.catalog != nil && len(ids) > 0 {
		items, err := s.catalog.GetByIDs(ctx, ids)
		if err != nil {
			// Metadata enrichment is display-only; candidates still stand.
			s.log.Warn("Preview: catalog lookup failed", "error", err, "series_id", seriesID)
		} else {
			byID = make(map[int64]types.ItemMetadata, len(items))
			for _, item := range items {
				byID[item.ItemID] = item
			}
			preview.Options = BuildFilterOptions(items)
		}
	}

	for _, cand := range filtered {
		pc := RecipePreviewCandidate{RecipeCandidate: cand}
		if meta, ok := byID[cand.ItemID]; ok {
			pc.Subject = meta.Subject
			pc.Chapter = meta.Chapter
			pc.Section = meta.Section
			pc.Kind = meta.Kind
		}
		preview.Candidates = append(preview.Candidates, pc)
	}
	return preview, nil
}
