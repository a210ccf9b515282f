package study

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/data/repos/testutil"
	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/dbctx"
)

func setupSeriesRepo(t *testing.T) (SeriesRepo, *gorm.DB, dbctx.Context) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewSeriesRepo(tx, testutil.Logger(t))
	return repo, tx, dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func TestSeriesRepoGetByIDPreloadsOrderedSessions(t *testing.T) {
	repo, tx, dbc := setupSeriesRepo(t)

	series := testutil.SeedSeries(t, dbc.Ctx, tx, "ordering")
	testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 2, types.StatusCompleted, []int64{5, 4})
	testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 1, types.StatusCompleted, []int64{3})

	got, err := repo.GetByID(dbc, series.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil {
		t.Fatalf("expected series")
	}
	if len(got.Sessions) != 2 {
		t.Fatalf("sessions: got=%d want=2", len(got.Sessions))
	}
	if got.Sessions[0].SessionID != 1 || got.Sessions[1].SessionID != 2 {
		t.Fatalf("session order: got=%d,%d want=1,2", got.Sessions[0].SessionID, got.Sessions[1].SessionID)
	}
	items := got.Sessions[1].Items
	if len(items) != 2 || items[0].ItemID != 5 || items[1].ItemID != 4 {
		t.Fatalf("slot order: got=%v want positions 0,1 holding items 5,4", items)
	}
}

func TestSeriesRepoGetByIDMissing(t *testing.T) {
	repo, _, dbc := setupSeriesRepo(t)

	got, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown id, got=%+v", got)
	}
}

func TestSeriesRepoUpdateFields(t *testing.T) {
	repo, tx, dbc := setupSeriesRepo(t)

	series := testutil.SeedSeries(t, dbc.Ctx, tx, "update")
	if err := repo.UpdateFields(dbc, series.ID, map[string]interface{}{
		"status": types.StatusCompleted,
	}); err != nil {
		t.Fatalf("update fields: %v", err)
	}

	got, err := repo.GetByID(dbc, series.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Fatalf("status: got=%q want=%q", got.Status, types.StatusCompleted)
	}
}

func TestSeriesRepoDelete(t *testing.T) {
	repo, tx, dbc := setupSeriesRepo(t)

	series := testutil.SeedSeries(t, dbc.Ctx, tx, "delete")
	if err := repo.DeleteByID(dbc, series.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := repo.GetByID(dbc, series.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Fatalf("expected series gone")
	}
}

func TestStudySessionRepoCountActive(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewStudySessionRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	series := testutil.SeedSeries(t, dbc.Ctx, tx, "count active")
	testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 1, types.StatusCompleted, []int64{1})
	testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 2, types.StatusActive, []int64{2})

	n, err := repo.CountActive(dbc, series.ID)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if n != 1 {
		t.Fatalf("active count: got=%d want=1", n)
	}
}

func TestItemSlotRepoDeleteBySessionRefs(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	sessionRepo := NewStudySessionRepo(tx, testutil.Logger(t))
	slotRepo := NewItemSlotRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	series := testutil.SeedSeries(t, dbc.Ctx, tx, "cascade")
	sess := testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 1, types.StatusActive, []int64{1, 2, 3})
	kept := testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 2, types.StatusCompleted, []int64{4})

	if err := slotRepo.DeleteBySessionRefs(dbc, []uuid.UUID{sess.ID}); err != nil {
		t.Fatalf("delete slots: %v", err)
	}
	if err := sessionRepo.DeleteByID(dbc, sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	var slots int64
	if err := tx.WithContext(dbc.Ctx).
		Model(&types.ItemSlot{}).
		Where("session_ref = ?", sess.ID).
		Count(&slots).Error; err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if slots != 0 {
		t.Fatalf("orphan slots: got=%d want=0", slots)
	}

	remaining, err := slotRepo.GetBySessionRef(dbc, kept.ID)
	if err != nil {
		t.Fatalf("get kept slots: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("kept slots: got=%d want=1", len(remaining))
	}
}

func TestItemSlotRepoUpdateInteraction(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	repo := NewItemSlotRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	series := testutil.SeedSeries(t, dbc.Ctx, tx, "interaction")
	sess := testutil.SeedSession(t, dbc.Ctx, tx, series.ID, 1, types.StatusActive, []int64{7})
	testutil.SeedInteraction(t, dbc.Ctx, tx, sess, 7, types.ResultWrong, types.DifficultyHard, types.ConfidenceLow, 33)

	slots, err := repo.GetBySessionRef(dbc, sess.ID)
	if err != nil {
		t.Fatalf("get slots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("slots: got=%d want=1", len(slots))
	}
	in, err := slots[0].InteractionValue()
	if err != nil {
		t.Fatalf("decode interaction: %v", err)
	}
	if in == nil || in.Result != types.ResultWrong || in.TimeSpentSec != 33 {
		t.Fatalf("interaction: got=%+v want Wrong/33s", in)
	}
}
