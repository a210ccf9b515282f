package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/dbctx"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type ItemSlotRepo interface {
	GetBySessionRef(dbc dbctx.Context, sessionRef uuid.UUID) ([]*types.ItemSlot, error)
	UpdateInteraction(dbc dbctx.Context, id uuid.UUID, interaction datatypes.JSON) error
	DeleteBySessionRefs(dbc dbctx.Context, sessionRefs []uuid.UUID) error
}

type itemSlotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemSlotRepo(db *gorm.DB, baseLog *logger.Logger) ItemSlotRepo {
	repoLog := baseLog.With("repo", "ItemSlotRepo")
	return &itemSlotRepo{db: db, log: repoLog}
}

func (r *itemSlotRepo) GetBySessionRef(dbc dbctx.Context, sessionRef uuid.UUID) ([]*types.ItemSlot, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []*types.ItemSlot
	if sessionRef == uuid.Nil {
		return rows, nil
	}
	err := t.WithContext(dbc.Ctx).
		Where("session_ref = ?", sessionRef).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateInteraction overwrites the slot's interaction payload.
func (r *itemSlotRepo) UpdateInteraction(dbc dbctx.Context, id uuid.UUID, interaction datatypes.JSON) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ItemSlot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"interaction": interaction,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *itemSlotRepo) DeleteBySessionRefs(dbc dbctx.Context, sessionRefs []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(sessionRefs) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("session_ref IN ?", sessionRefs).
		Delete(&types.ItemSlot{}).Error
}
