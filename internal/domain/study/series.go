package study

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Series is a titled collection of study sessions on one topic. It exclusively
// owns its sessions; at most one of them is active at any time.
type Series struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"seriesId"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Status    string         `gorm:"column:status;not null;index" json:"status"`
	StartedAt time.Time      `gorm:"column:started_at;not null" json:"startedAt"`
	Sessions  []StudySession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SeriesID;references:ID" json:"sessions"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
}

func (Series) TableName() string { return "study_series" }
