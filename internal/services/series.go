package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/data/repos"
	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/observability"
	"github.com/studyforge/studyforge-backend/internal/pkg/dbctx"
	pkgerrors "github.com/studyforge/studyforge-backend/internal/pkg/errors"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/platform/apierr"
)

const maxSeriesTitleLen = 200

// RecordInteractionInput is the payload for one attempt at one item. Either
// Result or IsCorrect names the outcome; table-quiz items additionally submit
// the placed grid plus the reference layout to grade it against.
type RecordInteractionInput struct {
	Result         string
	IsCorrect      *bool
	Difficulty     string
	Confidence     string
	TimeSpentSec   int
	UserGrid       [][]*types.GridCell
	ReferenceTable *types.ReferenceTable
}

// DeleteSessionOutcome reports what deleting a session did: whether the series
// itself was removed along with its last session, and how many sessions remain.
type DeleteSessionOutcome struct {
	SeriesDeleted     bool `json:"seriesDeleted"`
	RemainingSessions int  `json:"remainingSessions"`
}

// SeriesService owns the session lifecycle: every state transition runs inside
// one transaction holding the series row lock, so the single-active-session
// invariant is enforced at write time rather than repaired after the fact.
type SeriesService interface {
	CreateSeries(ctx context.Context, title string) (*types.Series, error)
	GetSeries(ctx context.Context, seriesID uuid.UUID) (*types.Series, error)
	ListSeries(ctx context.Context, limit, skip int) ([]*types.Series, int64, error)
	StartSession(ctx context.Context, seriesID uuid.UUID, itemIDs []int64, generatedFrom *int) (int, error)
	RecordInteraction(ctx context.Context, seriesID uuid.UUID, sessionID int, itemID int64, in RecordInteractionInput) error
	CompleteSession(ctx context.Context, seriesID uuid.UUID, sessionID int) error
	EditSession(ctx context.Context, seriesID uuid.UUID, sessionID int, newItemIDs []int64) (int, error)
	DeleteSession(ctx context.Context, seriesID uuid.UUID, sessionID int) (*DeleteSessionOutcome, error)
	GetSessionSummary(ctx context.Context, seriesID uuid.UUID, sessionID int) (*SessionSummary, error)
}

type seriesService struct {
	db          *gorm.DB
	log         *logger.Logger
	seriesRepo  repos.SeriesRepo
	sessionRepo repos.StudySessionRepo
	slotRepo    repos.ItemSlotRepo
}

func NewSeriesService(
	db *gorm.DB,
	baseLog *logger.Logger,
	seriesRepo repos.SeriesRepo,
	sessionRepo repos.StudySessionRepo,
	slotRepo repos.ItemSlotRepo,
) SeriesService {
	return &seriesService{
		db:          db,
		log:         baseLog.With("service", "SeriesService"),
		seriesRepo:  seriesRepo,
		sessionRepo: sessionRepo,
		slotRepo:    slotRepo,
	}
}

func observeSessionOp(operation string, err error) {
	m := observability.Current()
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.IncSessionOperation(operation, status)
}

func validationErr(msg string) error {
	return apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("%s: %w", msg, pkgerrors.ErrInvalidArgument))
}

func conflictErr(msg string) error {
	return apierr.New(http.StatusConflict, "conflict", fmt.Errorf("%s: %w", msg, pkgerrors.ErrConflict))
}

func notFoundErr(msg string) error {
	return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", msg, pkgerrors.ErrNotFound))
}

func (s *seriesService) CreateSeries(ctx context.Context, title string) (*types.Series, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErr("title must not be empty")
	}
	if len(title) > maxSeriesTitleLen {
		return nil, validationErr(fmt.Sprintf("title exceeds %d characters", maxSeriesTitleLen))
	}

	series := &types.Series{
		ID:        uuid.New(),
		Title:     title,
		Status:    types.StatusActive,
		StartedAt: time.Now().UTC(),
		Sessions:  []types.StudySession{},
	}
	if err := s.seriesRepo.Create(dbctx.Context{Ctx: ctx}, series); err != nil {
		s.log.Error("CreateSeries failed", "error", err)
		return nil, err
	}
	return series, nil
}

func (s *seriesService) GetSeries(ctx context.Context, seriesID uuid.UUID) (*types.Series, error) {
	series, err := s.seriesRepo.GetByID(dbctx.Context{Ctx: ctx}, seriesID)
	if err != nil {
		s.log.Error("GetSeries failed", "error", err, "series_id", seriesID)
		return nil, err
	}
	if series == nil {
		return nil, notFoundErr("series does not exist")
	}
	return series, nil
}

func (s *seriesService) ListSeries(ctx context.Context, limit, skip int) ([]*types.Series, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	rows, total, err := s.seriesRepo.List(dbctx.Context{Ctx: ctx}, limit, skip)
	if err != nil {
		s.log.Error("ListSeries failed", "error", err)
		return nil, 0, err
	}
	return rows, total, nil
}

func validateItemIDs(itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return validationErr("item set must not be empty")
	}
	seen := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			return validationErr(fmt.Sprintf("duplicate item %d", id))
		}
		seen[id] = true
	}
	return nil
}

func newSessionWithSlots(seriesID uuid.UUID, sessionID int, itemIDs []int64, generatedFrom *int) *types.StudySession {
	sess := &types.StudySession{
		ID:            uuid.New(),
		SeriesID:      seriesID,
		SessionID:     sessionID,
		Status:        types.StatusActive,
		GeneratedFrom: generatedFrom,
		StartedAt:     time.Now().UTC(),
	}
	for i, itemID := range itemIDs {
		sess.Items = append(sess.Items, types.ItemSlot{
			ID:         uuid.New(),
			SessionRef: sess.ID,
			Position:   i,
			ItemID:     itemID,
		})
	}
	return sess
}

func (s *seriesService) StartSession(ctx context.Context, seriesID uuid.UUID, itemIDs []int64, generatedFrom *int) (int, error) {
	if err := validateItemIDs(itemIDs); err != nil {
		return 0, err
	}

	var sessionID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		series, err := s.seriesRepo.LockByID(dbc, seriesID)
		if err != nil {
			return err
		}
		if series == nil {
			return notFoundErr("series does not exist")
		}

		active, err := s.sessionRepo.CountActive(dbc, seriesID)
		if err != nil {
			return err
		}
		if active > 0 {
			return conflictErr("series already has an active session")
		}

		existing, err := s.sessionRepo.GetBySeriesID(dbc, seriesID)
		if err != nil {
			return err
		}
		next := types.NextSessionID(existing)

		sess := newSessionWithSlots(seriesID, next, itemIDs, generatedFrom)
		if err := s.sessionRepo.Create(dbc, sess); err != nil {
			return err
		}
		if err := s.seriesRepo.UpdateFields(dbc, seriesID, map[string]interface{}{
			"status": types.StatusActive,
		}); err != nil {
			return err
		}
		sessionID = next
		return nil
	})
	observeSessionOp("start", err)
	if err != nil {
		return 0, err
	}
	s.log.Info("session started", "series_id", seriesID, "session_id", sessionID, "items", len(itemIDs))
	return sessionID, nil
}

func resolveResult(in RecordInteractionInput) (string, error) {
	if in.Result != "" {
		if !types.ValidResult(in.Result) {
			return "", validationErr(fmt.Sprintf("unknown result %q", in.Result))
		}
		return in.Result, nil
	}
	if in.IsCorrect != nil {
		if *in.IsCorrect {
			return types.ResultRight, nil
		}
		return types.ResultWrong, nil
	}
	return "", validationErr("one of result or isCorrect is required")
}

func (s *seriesService) RecordInteraction(ctx context.Context, seriesID uuid.UUID, sessionID int, itemID int64, in RecordInteractionInput) error {
	result, err := resolveResult(in)
	if err != nil {
		return err
	}
	if !types.ValidDifficulty(in.Difficulty) {
		return validationErr(fmt.Sprintf("unknown difficulty %q", in.Difficulty))
	}
	if !types.ValidConfidence(in.Confidence) {
		return validationErr(fmt.Sprintf("unknown confidence %q", in.Confidence))
	}
	if in.TimeSpentSec < 0 {
		return validationErr("timeSpent must not be negative")
	}
	if in.UserGrid != nil && in.ReferenceTable == nil {
		return validationErr("referenceTable is required with userGrid")
	}

	interaction := &types.Interaction{
		Result:       result,
		Difficulty:   in.Difficulty,
		Confidence:   in.Confidence,
		TimeSpentSec: in.TimeSpentSec,
		RecordedAt:   time.Now().UTC(),
	}
	if in.UserGrid != nil {
		interaction.UserGrid = in.UserGrid
		interaction.PlacementResults = ValidatePlacement(in.UserGrid, *in.ReferenceTable)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		series, err := s.seriesRepo.LockByID(dbc, seriesID)
		if err != nil {
			return err
		}
		if series == nil {
			return notFoundErr("series does not exist")
		}

		sess, err := s.sessionRepo.GetBySessionID(dbc, seriesID, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return notFoundErr("session does not exist")
		}
		if sess.Status != types.StatusActive {
			return conflictErr("session is already completed")
		}

		slot := sess.SlotByItemID(itemID)
		if slot == nil {
			return conflictErr(fmt.Sprintf("session has no slot for item %d", itemID))
		}

		// Last write wins per slot: re-answering inside a still-active
		// session replaces the prior interaction.
		if err := slot.SetInteraction(interaction); err != nil {
			return err
		}
		return s.slotRepo.UpdateInteraction(dbc, slot.ID, slot.Interaction)
	})
	observeSessionOp("record_interaction", err)
	return err
}

func (s *seriesService) CompleteSession(ctx context.Context, seriesID uuid.UUID, sessionID int) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		series, err := s.seriesRepo.LockByID(dbc, seriesID)
		if err != nil {
			return err
		}
		if series == nil {
			return notFoundErr("series does not exist")
		}

		sess, err := s.sessionRepo.GetBySessionID(dbc, seriesID, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return notFoundErr("session does not exist")
		}
		if sess.Status == types.StatusCompleted {
			// Completing twice is a safe retry, not an error.
			return nil
		}

		now := time.Now().UTC()
		if err := s.sessionRepo.UpdateFields(dbc, sess.ID, map[string]interface{}{
			"status":       types.StatusCompleted,
			"completed_at": now,
		}); err != nil {
			return err
		}
		return s.recomputeSeriesStatus(dbc, seriesID)
	})
	observeSessionOp("complete", err)
	return err
}

func (s *seriesService) EditSession(ctx context.Context, seriesID uuid.UUID, sessionID int, newItemIDs []int64) (int, error) {
	if err := validateItemIDs(newItemIDs); err != nil {
		return 0, err
	}

	var newSessionID int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		series, err := s.seriesRepo.LockByID(dbc, seriesID)
		if err != nil {
			return err
		}
		if series == nil {
			return notFoundErr("series does not exist")
		}

		old, err := s.sessionRepo.GetBySessionID(dbc, seriesID, sessionID)
		if err != nil {
			return err
		}
		if old == nil {
			return notFoundErr("session does not exist")
		}

		// The replacement session comes up active, so any other active
		// session blocks the edit.
		active, err := s.sessionRepo.CountActive(dbc, seriesID)
		if err != nil {
			return err
		}
		if old.Status == types.StatusActive {
			active--
		}
		if active > 0 {
			return conflictErr("series already has an active session")
		}

		// Allocate the replacement id while the old session still exists so
		// the old id is never handed out again.
		existing, err := s.sessionRepo.GetBySeriesID(dbc, seriesID)
		if err != nil {
			return err
		}
		next := types.NextSessionID(existing)

		if err := s.slotRepo.DeleteBySessionRefs(dbc, []uuid.UUID{old.ID}); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByID(dbc, old.ID); err != nil {
			return err
		}

		from := old.SessionID
		sess := newSessionWithSlots(seriesID, next, newItemIDs, &from)
		if err := s.sessionRepo.Create(dbc, sess); err != nil {
			return err
		}
		if err := s.seriesRepo.UpdateFields(dbc, seriesID, map[string]interface{}{
			"status": types.StatusActive,
		}); err != nil {
			return err
		}
		newSessionID = next
		return nil
	})
	observeSessionOp("edit", err)
	if err != nil {
		return 0, err
	}
	s.log.Info("session replaced", "series_id", seriesID, "old_session_id", sessionID, "new_session_id", newSessionID)
	return newSessionID, nil
}

func (s *seriesService) DeleteSession(ctx context.Context, seriesID uuid.UUID, sessionID int) (*DeleteSessionOutcome, error) {
	outcome := &DeleteSessionOutcome{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		series, err := s.seriesRepo.LockByID(dbc, seriesID)
		if err != nil {
			return err
		}
		if series == nil {
			return notFoundErr("series does not exist")
		}

		sess, err := s.sessionRepo.GetBySessionID(dbc, seriesID, sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return notFoundErr("session does not exist")
		}

		if err := s.slotRepo.DeleteBySessionRefs(dbc, []uuid.UUID{sess.ID}); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByID(dbc, sess.ID); err != nil {
			return err
		}

		remaining, err := s.sessionRepo.GetBySeriesID(dbc, seriesID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			// A series with zero sessions has no reason to exist.
			if err := s.seriesRepo.DeleteByID(dbc, seriesID); err != nil {
				return err
			}
			outcome.SeriesDeleted = true
			return nil
		}
		outcome.RemainingSessions = len(remaining)
		return s.recomputeSeriesStatus(dbc, seriesID)
	})
	observeSessionOp("delete", err)
	if err != nil {
		return nil, err
	}
	s.log.Info("session deleted", "series_id", seriesID, "session_id", sessionID, "series_deleted", outcome.SeriesDeleted)
	return outcome, nil
}

func (s *seriesService) GetSessionSummary(ctx context.Context, seriesID uuid.UUID, sessionID int) (*SessionSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sess, err := s.sessionRepo.GetBySessionID(dbc, seriesID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, notFoundErr("session does not exist")
	}
	return BuildSessionSummary(sess)
}

// recomputeSeriesStatus derives the series status from its remaining
// sessions: completed only when every session is completed.
func (s *seriesService) recomputeSeriesStatus(dbc dbctx.Context, seriesID uuid.UUID) error {
	sessions, err := s.sessionRepo.GetBySeriesID(dbc, seriesID)
	if err != nil {
		return err
	}
	status := types.StatusActive
	if types.AllSessionsCompleted(sessions) {
		status = types.StatusCompleted
	}
	return s.seriesRepo.UpdateFields(dbc, seriesID, map[string]interface{}{
		"status": status,
	})
}
