package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// ErrDuplicateEntry surfaces the narrow race where two writers pass the upsert
// read and then collide on the (user, date, slot) unique index.
var ErrDuplicateEntry = errors.New("entry already exists for this user, date and time slot")

// EntryStore persists exactly one entry per (user, date, time slot).
type EntryStore struct {
	db *gorm.DB
}

// NewEntryStore creates an EntryStore on the given database handle.
func NewEntryStore(db *gorm.DB) *EntryStore {
	return &EntryStore{db: db}
}

// Upsert writes the draft for the target user. An existing row for the logical
// key keeps its id and gets its full mutable column set overwritten; tags are
// replaced wholesale. The incoming sleep value is discarded when another slot
// of the same day already holds one.
func (s *EntryStore) Upsert(userID uint, draft *EntryDraft) (uint, error) {
	var entryID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sleep := draft.Sleep
		if sleep != nil {
			taken, err := sleepTakenElsewhere(tx, userID, draft.Date, draft.TimeSlot)
			if err != nil {
				return err
			}
			if taken {
				// sleep is a once-per-day fact that sticks to the slot that first recorded it
				sleep = nil
			}
		}

		var existing models.Entry
		err := tx.Where("user_id = ? AND date = ? AND time_slot = ?",
			userID, DateOnly(draft.Date), draft.TimeSlot).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Entry{}).Where("id = ?", existing.ID).
				Updates(entryColumns(draft, sleep)).Error; err != nil {
				return err
			}
			entryID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry := models.Entry{
				UserID:   userID,
				Date:     DateOnly(draft.Date),
				TimeSlot: draft.TimeSlot,
			}
			if err := tx.Create(applyColumns(&entry, draft, sleep)).Error; err != nil {
				if isDuplicateKey(err) {
					return ErrDuplicateEntry
				}
				return err
			}
			entryID = entry.ID
		default:
			return err
		}

		return replaceTags(tx, entryID, draft.TagIDs)
	})
	if err != nil {
		return 0, err
	}
	return entryID, nil
}

// entryColumns lists every mutable column so overwrites never merge field by
// field; nil pointers deliberately write NULL.
func entryColumns(draft *EntryDraft, sleep *int) map[string]interface{} {
	return map[string]interface{}{
		"medication_id":       draft.MedicationID,
		"dose":                draft.Dose,
		"sleep":               sleep,
		"hyperactivity":       draft.Hyperactivity,
		"mood":                draft.Mood,
		"irritability":        draft.Irritability,
		"appetite":            draft.Appetite,
		"focus":               draft.Focus,
		"weight":              draft.Weight,
		"other_effects":       draft.OtherEffects,
		"side_effects":        draft.SideEffects,
		"special_events":      draft.SpecialEvents,
		"menstruation_phase":  draft.MenstruationPhase,
		"teacher_feedback":    draft.TeacherFeedback,
		"emotional_reactions": draft.EmotionalReactions,
	}
}

func applyColumns(entry *models.Entry, draft *EntryDraft, sleep *int) *models.Entry {
	entry.MedicationID = draft.MedicationID
	entry.Dose = draft.Dose
	entry.Sleep = sleep
	entry.Hyperactivity = draft.Hyperactivity
	entry.Mood = draft.Mood
	entry.Irritability = draft.Irritability
	entry.Appetite = draft.Appetite
	entry.Focus = draft.Focus
	entry.Weight = draft.Weight
	entry.OtherEffects = draft.OtherEffects
	entry.SideEffects = draft.SideEffects
	entry.SpecialEvents = draft.SpecialEvents
	entry.MenstruationPhase = draft.MenstruationPhase
	entry.TeacherFeedback = draft.TeacherFeedback
	entry.EmotionalReactions = draft.EmotionalReactions
	return entry
}

// sleepTakenElsewhere checks whether a different slot of the same day already
// carries a non-null sleep rating.
func sleepTakenElsewhere(tx *gorm.DB, userID uint, date time.Time, slot string) (bool, error) {
	var count int64
	err := tx.Model(&models.Entry{}).
		Where("user_id = ? AND date = ? AND time_slot <> ? AND sleep IS NOT NULL",
			userID, DateOnly(date), slot).
		Count(&count).Error
	return count > 0, err
}

// replaceTags removes every tag link of the entry and inserts the new set,
// deduplicated. An empty set clears all tags.
func replaceTags(tx *gorm.DB, entryID uint, tagIDs []uint) error {
	if err := tx.Where("entry_id = ?", entryID).Delete(&models.EntryTag{}).Error; err != nil {
		return err
	}
	ids := utils.UniqueUint(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	links := make([]models.EntryTag, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.EntryTag{EntryID: entryID, TagID: id})
	}
	return tx.Create(&links).Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
