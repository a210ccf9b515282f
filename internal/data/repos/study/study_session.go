package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/dbctx"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type StudySessionRepo interface {
	Create(dbc dbctx.Context, session *types.StudySession) error
	GetBySeriesID(dbc dbctx.Context, seriesID uuid.UUID) ([]*types.StudySession, error)
	GetBySessionID(dbc dbctx.Context, seriesID uuid.UUID, sessionID int) (*types.StudySession, error)
	CountActive(dbc dbctx.Context, seriesID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	repoLog := baseLog.With("repo", "StudySessionRepo")
	return &studySessionRepo{db: db, log: repoLog}
}

// Create inserts the session together with its item slots.
func (r *studySessionRepo) Create(dbc dbctx.Context, session *types.StudySession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(session).Error
}

func (r *studySessionRepo) GetBySeriesID(dbc dbctx.Context, seriesID uuid.UUID) ([]*types.StudySession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.StudySession
	if seriesID == uuid.Nil {
		return rows, nil
	}
	err := t.WithContext(dbc.Ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("series_id = ?", seriesID).
		Order("session_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *studySessionRepo) GetBySessionID(dbc dbctx.Context, seriesID uuid.UUID, sessionID int) (*types.StudySession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if seriesID == uuid.Nil {
		return nil, nil
	}
	var row types.StudySession
	err := t.WithContext(dbc.Ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("series_id = ? AND session_id = ?", seriesID, sessionID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *studySessionRepo) CountActive(dbc dbctx.Context, seriesID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if seriesID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.StudySession{}).
		Where("series_id = ? AND status = ?", seriesID, types.StatusActive).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *studySessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.StudySession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteByID removes the session row only. Migrations run without FK
// constraints, so callers delete the slots through ItemSlotRepo in the same
// transaction.
func (r *studySessionRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.StudySession{}).Error
}
