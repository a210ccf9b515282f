package app

import (
	"gorm.io/gorm"

	"github.com/studyforge/studyforge-backend/internal/data/repos"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
)

type Repos struct {
	Series   repos.SeriesRepo
	Session  repos.StudySessionRepo
	ItemSlot repos.ItemSlotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Series:   repos.NewSeriesRepo(db, log),
		Session:  repos.NewStudySessionRepo(db, log),
		ItemSlot: repos.NewItemSlotRepo(db, log),
	}
}
