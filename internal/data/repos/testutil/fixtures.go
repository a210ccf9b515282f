package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/studyforge/studyforge-backend/internal/domain"
)

func SeedSeries(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Series {
	tb.Helper()
	s := &types.Series{
		ID:        uuid.New(),
		Title:     title,
		Status:    types.StatusActive,
		StartedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed series: %v", err)
	}
	return s
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, seriesID uuid.UUID, sessionID int, status string, itemIDs []int64) *types.StudySession {
	tb.Helper()
	sess := &types.StudySession{
		ID:        uuid.New(),
		SeriesID:  seriesID,
		SessionID: sessionID,
		Status:    status,
		StartedAt: time.Now().UTC(),
	}
	if status == types.StatusCompleted {
		now := time.Now().UTC()
		sess.CompletedAt = &now
	}
	for i, itemID := range itemIDs {
		sess.Items = append(sess.Items, types.ItemSlot{
			ID:         uuid.New(),
			SessionRef: sess.ID,
			Position:   i,
			ItemID:     itemID,
		})
	}
	if err := tx.WithContext(ctx).Create(sess).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return sess
}

// SeedInteraction records a basic flashcard interaction on the slot holding
// itemID within the given session.
func SeedInteraction(tb testing.TB, ctx context.Context, tx *gorm.DB, sess *types.StudySession, itemID int64, result, difficulty, confidence string, timeSpent int) {
	tb.Helper()
	slot := sess.SlotByItemID(itemID)
	if slot == nil {
		tb.Fatalf("seed interaction: session %d has no item %d", sess.SessionID, itemID)
	}
	if err := slot.SetInteraction(&types.Interaction{
		Result:       result,
		Difficulty:   difficulty,
		Confidence:   confidence,
		TimeSpentSec: timeSpent,
		RecordedAt:   time.Now().UTC(),
	}); err != nil {
		tb.Fatalf("seed interaction: %v", err)
	}
	if err := tx.WithContext(ctx).
		Model(&types.ItemSlot{}).
		Where("id = ?", slot.ID).
		Update("interaction", slot.Interaction).Error; err != nil {
		tb.Fatalf("seed interaction: %v", err)
	}
}

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
