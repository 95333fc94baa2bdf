package services

import (
	"gorm.io/gorm"

	"github.com/famlog/meddiary/models"
	"github.com/famlog/meddiary/utils"
)

// RewardResult is the gamification block returned for child users only.
type RewardResult struct {
	PointsEarned int
	TotalPoints  int
	Streak       int
	NewBadges    []models.Badge
	NextBadge    *NextBadge
}

// RecordResult combines the stored entry id with the optional reward outcome.
type RecordResult struct {
	EntryID uint
	Reward  *RewardResult
}

// EntryRecorder sequences normalize -> store -> ledger -> badges for one
// record-entry request.
type EntryRecorder struct {
	db         *gorm.DB
	normalizer *Normalizer
	store      *EntryStore
	ledger     *RewardLedger
	badges     *BadgeEvaluator
}

// NewEntryRecorder wires the full pipeline on one database handle.
func NewEntryRecorder(db *gorm.DB, clock Clock, pointsPerEntry int) *EntryRecorder {
	return &EntryRecorder{
		db:         db,
		normalizer: NewNormalizer(clock),
		store:      NewEntryStore(db),
		ledger:     NewRewardLedger(clock, pointsPerEntry),
		badges:     NewBadgeEvaluator(clock),
	}
}

// Record validates and persists one entry for the target user, then updates
// reward state when the target is a child. The entry is the primary durable
// fact: a ledger or badge failure after a successful store is logged and the
// result simply omits the reward block, it never rolls the entry back.
func (r *EntryRecorder) Record(targetUserID uint, in EntryInput) (*RecordResult, error) {
	draft, verr := r.normalizer.Normalize(in)
	if verr != nil {
		return nil, verr
	}

	entryID, err := r.store.Upsert(targetUserID, draft)
	if err != nil {
		return nil, err
	}

	result := &RecordResult{EntryID: entryID}

	// ledger and badges form one all-or-nothing unit
	err = r.db.Transaction(func(tx *gorm.DB) error {
		update, err := r.ledger.Apply(tx, targetUserID, draft.Date)
		if err != nil {
			return err
		}
		if update == nil {
			return nil
		}
		newBadges, next, err := r.badges.Evaluate(tx, targetUserID, update.Streak, draft.Date, draft.TimeSlot)
		if err != nil {
			return err
		}
		result.Reward = &RewardResult{
			PointsEarned: update.PointsEarned,
			TotalPoints:  update.TotalPoints,
			Streak:       update.Streak,
			NewBadges:    newBadges,
			NextBadge:    next,
		}
		return nil
	})
	if err != nil {
		result.Reward = nil
		if utils.Sugar != nil {
			utils.Sugar.Errorf("reward update failed for user %d entry %d: %v", targetUserID, entryID, err)
		}
	}

	return result, nil
}
