package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/data/repos"
	"github.com/studyforge/studyforge-backend/internal/data/repos/testutil"
	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/platform/apierr"
)

func newTestSeriesService(t *testing.T) (SeriesService, *gorm.DB) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	svc := NewSeriesService(
		tx,
		log,
		repos.NewSeriesRepo(tx, log),
		repos.NewStudySessionRepo(tx, log),
		repos.NewItemSlotRepo(tx, log),
	)
	return svc, tx
}

func wantAPIErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apierr.Error, got=%T (%v)", err, err)
	}
	if apiErr.Code != code {
		t.Fatalf("code: got=%q want=%q (%v)", apiErr.Code, code, err)
	}
}

func TestCreateSeriesValidation(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	if _, err := svc.CreateSeries(ctx, "   "); err == nil {
		t.Fatalf("expected validation error for blank title")
	}

	series, err := svc.CreateSeries(ctx, "  Anatomy review  ")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	if series.Title != "Anatomy review" {
		t.Fatalf("title: got=%q want trimmed", series.Title)
	}
	if series.Status != types.StatusActive {
		t.Fatalf("status: got=%q want=%q", series.Status, types.StatusActive)
	}
}

func TestStartSessionEnforcesSingleActive(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "single active")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	first, err := svc.StartSession(ctx, series.ID, []int64{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if first != 1 {
		t.Fatalf("session id: got=%d want=1", first)
	}

	_, err = svc.StartSession(ctx, series.ID, []int64{4, 5}, nil)
	wantAPIErrCode(t, err, "conflict")

	// Completing the active session unblocks the next start.
	if err := svc.CompleteSession(ctx, series.ID, first); err != nil {
		t.Fatalf("complete session: %v", err)
	}
	second, err := svc.StartSession(ctx, series.ID, []int64{4, 5}, nil)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second != 2 {
		t.Fatalf("second session id: got=%d want=2", second)
	}
}

func TestStartSessionValidation(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "validation")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	_, err = svc.StartSession(ctx, series.ID, nil, nil)
	wantAPIErrCode(t, err, "validation_error")

	_, err = svc.StartSession(ctx, series.ID, []int64{1, 1}, nil)
	wantAPIErrCode(t, err, "validation_error")

	_, err = svc.StartSession(ctx, uuid.New(), []int64{1}, nil)
	wantAPIErrCode(t, err, "not_found")
}

func TestRecordInteractionRoundTrip(t *testing.T) {
	svc, tx := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "round trip")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	sessionID, err := svc.StartSession(ctx, series.ID, []int64{10, 11}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	err = svc.RecordInteraction(ctx, series.ID, sessionID, 10, RecordInteractionInput{
		Result:       types.ResultWrong,
		Difficulty:   types.DifficultyHard,
		Confidence:   types.ConfidenceLow,
		TimeSpentSec: 42,
	})
	if err != nil {
		t.Fatalf("record interaction: %v", err)
	}

	// Re-answering overwrites.
	isCorrect := true
	err = svc.RecordInteraction(ctx, series.ID, sessionID, 10, RecordInteractionInput{
		IsCorrect:    &isCorrect,
		Difficulty:   types.DifficultyEasy,
		Confidence:   types.ConfidenceHigh,
		TimeSpentSec: 12,
	})
	if err != nil {
		t.Fatalf("overwrite interaction: %v", err)
	}

	var slot types.ItemSlot
	if err := tx.WithContext(ctx).Where("item_id = ?", int64(10)).First(&slot).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	in, err := slot.InteractionValue()
	if err != nil {
		t.Fatalf("decode interaction: %v", err)
	}
	if in == nil {
		t.Fatalf("expected stored interaction")
	}
	if in.Result != types.ResultRight || in.TimeSpentSec != 12 {
		t.Fatalf("stored interaction: got=%s/%ds want=Right/12s", in.Result, in.TimeSpentSec)
	}
}

func TestRecordInteractionRejections(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "rejections")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	sessionID, err := svc.StartSession(ctx, series.ID, []int64{10}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	valid := RecordInteractionInput{
		Result:       types.ResultRight,
		Difficulty:   types.DifficultyMedium,
		Confidence:   types.ConfidenceHigh,
		TimeSpentSec: 5,
	}

	bad := valid
	bad.Result = ""
	wantAPIErrCode(t, svc.RecordInteraction(ctx, series.ID, sessionID, 10, bad), "validation_error")

	bad = valid
	bad.Difficulty = "Impossible"
	wantAPIErrCode(t, svc.RecordInteraction(ctx, series.ID, sessionID, 10, bad), "validation_error")

	bad = valid
	bad.TimeSpentSec = -1
	wantAPIErrCode(t, svc.RecordInteraction(ctx, series.ID, sessionID, 10, bad), "validation_error")

	bad = valid
	bad.UserGrid = [][]*types.GridCell{{{Text: "a"}}}
	wantAPIErrCode(t, svc.RecordInteraction(ctx, series.ID, sessionID, 10, bad), "validation_error")

	// Item not in the session.
	wantAPIErrCode(t, svc.RecordInteraction(ctx, series.ID, sessionID, 99, valid), "conflict")

	// Completed sessions take no further answers.
	if err := svc.CompleteSession(ctx, series.ID, sessionID); err != nil {
		t.Fatalf("complete session: %v", err)
	}
	wantAPIErrCode(t, svc.RecordInteraction(ctx, series.ID, sessionID, 10, valid), "conflict")
}

func TestRecordInteractionStoresPlacementResults(t *testing.T) {
	svc, tx := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "tables")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	sessionID, err := svc.StartSession(ctx, series.ID, []int64{20}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	ref := types.ReferenceTable{
		Rows:    1,
		Columns: 2,
		Cells: []types.ReferenceCell{
			{Row: 0, Column: 0, Text: "a"},
			{Row: 0, Column: 1, Text: "b"},
		},
	}
	err = svc.RecordInteraction(ctx, series.ID, sessionID, 20, RecordInteractionInput{
		Result:         types.ResultRight,
		Difficulty:     types.DifficultyMedium,
		Confidence:     types.ConfidenceHigh,
		TimeSpentSec:   60,
		UserGrid:       [][]*types.GridCell{{{Text: "a"}, {Text: "x"}}},
		ReferenceTable: &ref,
	})
	if err != nil {
		t.Fatalf("record table interaction: %v", err)
	}

	var slot types.ItemSlot
	if err := tx.WithContext(ctx).Where("item_id = ?", int64(20)).First(&slot).Error; err != nil {
		t.Fatalf("load slot: %v", err)
	}
	in, err := slot.InteractionValue()
	if err != nil {
		t.Fatalf("decode interaction: %v", err)
	}
	if in == nil || in.PlacementResults == nil {
		t.Fatalf("expected stored placement results")
	}
	if in.PlacementResults.CorrectPlacements != 1 || in.PlacementResults.TotalCells != 2 {
		t.Fatalf("placement results: got=%d/%d want=1/2",
			in.PlacementResults.CorrectPlacements, in.PlacementResults.TotalCells)
	}

	summary, err := svc.GetSessionSummary(ctx, series.ID, sessionID)
	if err != nil {
		t.Fatalf("session summary: %v", err)
	}
	if len(summary.Tables) != 1 || summary.OverallAccuracy != 50 {
		t.Fatalf("summary: got %d tables accuracy=%d want 1 table accuracy=50",
			len(summary.Tables), summary.OverallAccuracy)
	}
}

func TestCompleteSessionIdempotent(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "idempotent complete")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	sessionID, err := svc.StartSession(ctx, series.ID, []int64{1}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	if err := svc.CompleteSession(ctx, series.ID, sessionID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if err := svc.CompleteSession(ctx, series.ID, sessionID); err != nil {
		t.Fatalf("second complete should be a no-op: %v", err)
	}

	got, err := svc.GetSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Fatalf("series status: got=%q want=%q", got.Status, types.StatusCompleted)
	}
	if got.Sessions[0].CompletedAt == nil {
		t.Fatalf("expected completedAt to be set")
	}
}

func TestEditSessionAllocatesFreshID(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "edit")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	first, err := svc.StartSession(ctx, series.ID, []int64{1, 2}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	replacement, err := svc.EditSession(ctx, series.ID, first, []int64{3, 4, 5})
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	if replacement != 2 {
		t.Fatalf("replacement id: got=%d want=2 (old id never reused)", replacement)
	}

	got, err := svc.GetSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if len(got.Sessions) != 1 {
		t.Fatalf("sessions: got=%d want=1 (old session gone)", len(got.Sessions))
	}
	sess := got.Sessions[0]
	if sess.SessionID != replacement {
		t.Fatalf("session id: got=%d want=%d", sess.SessionID, replacement)
	}
	if sess.GeneratedFrom == nil || *sess.GeneratedFrom != first {
		t.Fatalf("generatedFrom: got=%v want=%d", sess.GeneratedFrom, first)
	}
	if len(sess.Items) != 3 {
		t.Fatalf("items: got=%d want=3", len(sess.Items))
	}
	for _, slot := range sess.Items {
		if slot.HasInteraction() {
			t.Fatalf("replacement slots must start empty, item %d has an interaction", slot.ItemID)
		}
	}
}

func TestDeleteSessionRemovesSeriesWithLastSession(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "delete last")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	sessionID, err := svc.StartSession(ctx, series.ID, []int64{1}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	outcome, err := svc.DeleteSession(ctx, series.ID, sessionID)
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if !outcome.SeriesDeleted {
		t.Fatalf("expected series deletion with last session")
	}

	_, err = svc.GetSeries(ctx, series.ID)
	wantAPIErrCode(t, err, "not_found")
}

func TestDeleteSessionRecomputesSeriesStatus(t *testing.T) {
	svc, tx := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "delete recompute")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	first, err := svc.StartSession(ctx, series.ID, []int64{1}, nil)
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	if err := svc.CompleteSession(ctx, series.ID, first); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	second, err := svc.StartSession(ctx, series.ID, []int64{2}, nil)
	if err != nil {
		t.Fatalf("start second: %v", err)
	}

	// Dropping the active session leaves only completed ones.
	outcome, err := svc.DeleteSession(ctx, series.ID, second)
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if outcome.SeriesDeleted {
		t.Fatalf("series must survive while sessions remain")
	}
	if outcome.RemainingSessions != 1 {
		t.Fatalf("remaining: got=%d want=1", outcome.RemainingSessions)
	}

	got, err := svc.GetSeries(ctx, series.ID)
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Fatalf("series status: got=%q want=%q", got.Status, types.StatusCompleted)
	}

	var orphans int64
	if err := tx.Model(&types.ItemSlot{}).Where("item_id = ?", int64(2)).Count(&orphans).Error; err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("orphan slots after delete: got=%d want=0", orphans)
	}
}

func TestDeleteSessionLowerIDNotReallocated(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "delete lower id")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	first, err := svc.StartSession(ctx, series.ID, []int64{1}, nil)
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	if err := svc.CompleteSession(ctx, series.ID, first); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	second, err := svc.StartSession(ctx, series.ID, []int64{2}, nil)
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if _, err := svc.DeleteSession(ctx, series.ID, first); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if err := svc.CompleteSession(ctx, series.ID, second); err != nil {
		t.Fatalf("complete second: %v", err)
	}

	// Ids keep counting past the surviving max, so 1 is never handed out again.
	third, err := svc.StartSession(ctx, series.ID, []int64{3}, nil)
	if err != nil {
		t.Fatalf("start third: %v", err)
	}
	if third != 3 {
		t.Fatalf("session id: got=%d want=3", third)
	}
}

func TestGetSessionSummaryNotFound(t *testing.T) {
	svc, _ := newTestSeriesService(t)
	ctx := context.Background()

	series, err := svc.CreateSeries(ctx, "missing summary")
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	_, err = svc.GetSessionSummary(ctx, series.ID, 9)
	wantAPIErrCode(t, err, "not_found")
}
