package models

import "time"

// Time slots an entry can be recorded for. At most one entry exists per
// (user, date, slot), enforced by uidx_entries_user_date_slot.
const (
	SlotMorning = "morning"
	SlotNoon    = "noon"
	SlotEvening = "evening"
)

// Entry is one diary record for a user, calendar date and time slot. All rating
// columns are nullable 1-5 scales; Sleep additionally obeys a once-per-day rule
// across the slots of the same date (owned by the entry store, not the schema).
type Entry struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	UserID             uint        `gorm:"not null;index;uniqueIndex:uidx_entries_user_date_slot" json:"user_id"`
	Date               time.Time   `gorm:"type:date;not null;uniqueIndex:uidx_entries_user_date_slot" json:"date"`
	TimeSlot           string      `gorm:"size:16;not null;uniqueIndex:uidx_entries_user_date_slot" json:"time_slot"`
	MedicationID       *uint       `gorm:"index" json:"medication_id"`
	Dose               string      `gorm:"size:64" json:"dose"`
	Sleep              *int        `json:"sleep"`
	Hyperactivity      *int        `json:"hyperactivity"`
	Mood               *int        `json:"mood"`
	Irritability       *int        `json:"irritability"`
	Appetite           *int        `json:"appetite"`
	Focus              *int        `json:"focus"`
	Weight             *string     `gorm:"type:decimal(5,2)" json:"weight"`
	OtherEffects       string      `gorm:"type:text" json:"other_effects"`
	SideEffects        string      `gorm:"type:text" json:"side_effects"`
	SpecialEvents      string      `gorm:"type:text" json:"special_events"`
	MenstruationPhase  string      `gorm:"size:64" json:"menstruation_phase"`
	TeacherFeedback    string      `gorm:"type:text" json:"teacher_feedback"`
	EmotionalReactions string      `gorm:"type:text" json:"emotional_reactions"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	Medication         *Medication `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"medication,omitempty"`
	Tags               []Tag       `gorm:"many2many:entry_tags;" json:"tags"`
}

// EntryTag is the join row between entries and tags. The store replaces the full
// set on every write, so rows here are only ever bulk-deleted and re-inserted.
type EntryTag struct {
	EntryID uint `gorm:"primaryKey" json:"entry_id"`
	TagID   uint `gorm:"primaryKey" json:"tag_id"`
}

// TableName keeps the join table aligned with the many2many declaration on Entry.
func (EntryTag) TableName() string {
	return "entry_tags"
}
