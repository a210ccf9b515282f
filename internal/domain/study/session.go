package study

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StudySession is one bounded study attempt holding a fixed item set. The
// caller-facing identifier is SessionID, sequential and unique within its
// series; the uuid primary key is internal plumbing only.
type StudySession struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	SeriesID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_series_session,unique,priority:1" json:"-"`
	SessionID     int        `gorm:"column:session_id;not null;index:idx_series_session,unique,priority:2" json:"sessionId"`
	Status        string     `gorm:"column:status;not null;index" json:"status"`
	GeneratedFrom *int       `gorm:"column:generated_from" json:"generatedFrom,omitempty"`
	StartedAt     time.Time  `gorm:"column:started_at;not null" json:"startedAt"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	Items         []ItemSlot `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionRef;references:ID" json:"items"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

func (StudySession) TableName() string { return "study_session" }

// NextSessionID allocates max(existing)+1, or 1 for an empty set. Ids only
// grow while any session remains, so a deleted non-max id is never reissued.
func NextSessionID(sessions []*StudySession) int {
	max := 0
	for _, s := range sessions {
		if s.SessionID > max {
			max = s.SessionID
		}
	}
	return max + 1
}

// AllSessionsCompleted reports whether every session is completed. False for
// an empty set.
func AllSessionsCompleted(sessions []*StudySession) bool {
	if len(sessions) == 0 {
		return false
	}
	for _, s := range sessions {
		if s.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// SlotByItemID returns the slot holding itemID, or nil.
func (s *StudySession) SlotByItemID(itemID int64) *ItemSlot {
	for i := range s.Items {
		if s.Items[i].ItemID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// ItemSlot is a concrete placeholder for one item in a session. Slots are
// created eagerly with a null interaction so edit/delete always operate on an
// inspectable record rather than an absence.
type ItemSlot struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"-"`
	SessionRef  uuid.UUID      `gorm:"type:uuid;not null;index:idx_slot_session_item,unique,priority:1" json:"-"`
	Position    int            `gorm:"column:position;not null" json:"-"`
	ItemID      int64          `gorm:"column:item_id;not null;index:idx_slot_session_item,unique,priority:2" json:"itemId"`
	Interaction datatypes.JSON `gorm:"column:interaction;type:jsonb" json:"interaction"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
}

func (ItemSlot) TableName() string { return "item_slot" }

// HasInteraction reports whether the slot carries a recorded interaction.
func (s *ItemSlot) HasInteraction() bool {
	raw := []byte(s.Interaction)
	return len(raw) > 0 && string(raw) != "null"
}

// InteractionValue decodes the stored interaction, or returns nil for an empty
// slot.
func (s *ItemSlot) InteractionValue() (*Interaction, error) {
	if !s.HasInteraction() {
		return nil, nil
	}
	var in Interaction
	if err := json.Unmarshal(s.Interaction, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// SetInteraction overwrites the stored interaction (last write wins per slot).
func (s *ItemSlot) SetInteraction(in *Interaction) error {
	if in == nil {
		s.Interaction = nil
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	s.Interaction = datatypes.JSON(raw)
	return nil
}
