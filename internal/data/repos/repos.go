package repos

import (
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/data/repos/study"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type SeriesRepo = study.SeriesRepo
type StudySessionRepo = study.StudySessionRepo
type ItemSlotRepo = study.ItemSlotRepo

func NewSeriesRepo(db *gorm.DB, baseLog *logger.Logger) SeriesRepo {
	return study.NewSeriesRepo(db, baseLog)
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	return study.NewStudySessionRepo(db, baseLog)
}

func NewItemSlotRepo(db *gorm.DB, baseLog *logger.Logger) ItemSlotRepo {
	return study.NewItemSlotRepo(db, baseLog)
}
