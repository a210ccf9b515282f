package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/dbctx"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type SeriesRepo interface {
	Create(dbc dbctx.Context, series *types.Series) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Series, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Series, error)
	List(dbc dbctx.Context, limit, skip int) ([]*types.Series, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type seriesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeriesRepo(db *gorm.DB, baseLog *logger.Logger) SeriesRepo {
	repoLog := baseLog.With("repo", "SeriesRepo")
	return &seriesRepo{db: db, log: repoLog}
}

func (r *seriesRepo) Create(dbc dbctx.Context, series *types.Series) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(series).Error
}

func (r *seriesRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Series, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Series
	err := t.WithContext(dbc.Ctx).
		Preload("Sessions", func(q *gorm.DB) *gorm.DB { return q.Order("session_id ASC") }).
		Preload("Sessions.Items", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("id = ?", id).
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

// LockByID takes the series row FOR UPDATE so check-then-act sequences against
// one series serialize. Sessions are not preloaded here; load them inside the
// same transaction after the lock is held. SQLite serializes writers on its
// own, so the clause is postgres-only.
func (r *seriesRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Series, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx)
	if t.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row types.Series
	err := q.
		Where("id = ?", id).
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

func (r *seriesRepo) List(dbc dbctx.Context, limit, skip int) ([]*types.Series, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var total int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Series{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []*types.Series
	q := t.WithContext(dbc.Ctx).
		Preload("Sessions", func(q *gorm.DB) *gorm.DB { return q.Order("session_id ASC") }).
		Preload("Sessions.Items", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Order("started_at DESC").
		Offset(skip)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *seriesRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Series{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteByID removes the series row only. Sessions and slots are removed by
// the session repo; migrations run without FK constraints, so cascades are
// explicit.
func (r *seriesRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Series{}).Error
}
