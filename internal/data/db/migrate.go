package db

import (
	"gorm.io/gorm"

	types "github.com/studyforge/studyforge-backend/internal/domain"
)

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Series{},
		&types.StudySession{},
		&types.ItemSlot{},
	)
}
