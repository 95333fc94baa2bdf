package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famlog/meddiary/models"
)

func intp(v int) *int { return &v }

func TestUpsertKeepsRowID(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	store := NewEntryStore(db)

	first := &EntryDraft{
		Date:     day(2024, time.March, 5),
		TimeSlot: models.SlotMorning,
		Mood:     intp(2),
		Sleep:    intp(4),
		Dose:     "10mg",
	}
	id1, err := store.Upsert(user.ID, first)
	require.NoError(t, err)
	require.NotZero(t, id1)

	second := &EntryDraft{
		Date:     day(2024, time.March, 5),
		TimeSlot: models.SlotMorning,
		Mood:     intp(5),
	}
	id2, err := store.Upsert(user.ID, second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "overwrite must keep the original row id")

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var entry models.Entry
	require.NoError(t, db.First(&entry, id1).Error)
	require.NotNil(t, entry.Mood)
	assert.Equal(t, 5, *entry.Mood)
	assert.Nil(t, entry.Sleep, "absent fields overwrite to NULL, not merge")
	assert.Empty(t, entry.Dose)
}

func TestUpsertSeparateSlotsSeparateRows(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	store := NewEntryStore(db)

	date := day(2024, time.March, 5)
	for _, slot := range []string{models.SlotMorning, models.SlotNoon, models.SlotEvening} {
		_, err := store.Upsert(user.ID, &EntryDraft{Date: date, TimeSlot: slot})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSleepOncePerDay(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	store := NewEntryStore(db)
	date := day(2024, time.March, 5)

	morningID, err := store.Upsert(user.ID, &EntryDraft{
		Date: date, TimeSlot: models.SlotMorning, Sleep: intp(4),
	})
	require.NoError(t, err)

	eveningID, err := store.Upsert(user.ID, &EntryDraft{
		Date: date, TimeSlot: models.SlotEvening, Sleep: intp(2),
	})
	require.NoError(t, err)

	var morning, evening models.Entry
	require.NoError(t, db.First(&morning, morningID).Error)
	require.NoError(t, db.First(&evening, eveningID).Error)

	require.NotNil(t, morning.Sleep)
	assert.Equal(t, 4, *morning.Sleep)
	assert.Nil(t, evening.Sleep, "second sleep value of the day is discarded")

	// the slot that holds sleep can still change it
	_, err = store.Upsert(user.ID, &EntryDraft{
		Date: date, TimeSlot: models.SlotMorning, Sleep: intp(3),
	})
	require.NoError(t, err)
	require.NoError(t, db.First(&morning, morningID).Error)
	require.NotNil(t, morning.Sleep)
	assert.Equal(t, 3, *morning.Sleep)
}

func TestSleepFreedAfterOverwrite(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	store := NewEntryStore(db)
	date := day(2024, time.March, 5)

	morningID, err := store.Upsert(user.ID, &EntryDraft{
		Date: date, TimeSlot: models.SlotMorning, Sleep: intp(4),
	})
	require.NoError(t, err)

	// overwriting the morning without sleep releases the once-per-day claim
	_, err = store.Upsert(user.ID, &EntryDraft{Date: date, TimeSlot: models.SlotMorning})
	require.NoError(t, err)

	eveningID, err := store.Upsert(user.ID, &EntryDraft{
		Date: date, TimeSlot: models.SlotEvening, Sleep: intp(2),
	})
	require.NoError(t, err)

	var morning, evening models.Entry
	require.NoError(t, db.First(&morning, morningID).Error)
	require.NoError(t, db.First(&evening, eveningID).Error)
	assert.Nil(t, morning.Sleep)
	require.NotNil(t, evening.Sleep)
	assert.Equal(t, 2, *evening.Sleep)
}

func TestReplaceTags(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, models.RoleChild)
	store := NewEntryStore(db)

	school := models.Tag{Name: "school"}
	sport := models.Tag{Name: "sport"}
	require.NoError(t, db.Create(&school).Error)
	require.NoError(t, db.Create(&sport).Error)

	entryID, err := store.Upsert(user.ID, &EntryDraft{
		Date:     day(2024, time.March, 5),
		TimeSlot: models.SlotMorning,
		TagIDs:   []uint{school.ID, sport.ID, sport.ID},
	})
	require.NoError(t, err)

	var links []models.EntryTag
	require.NoError(t, db.Where("entry_id = ?", entryID).Find(&links).Error)
	assert.Len(t, links, 2, "duplicate tag ids collapse to one link")

	_, err = store.Upsert(user.ID, &EntryDraft{
		Date:     day(2024, time.March, 5),
		TimeSlot: models.SlotMorning,
		TagIDs:   []uint{sport.ID},
	})
	require.NoError(t, err)
	require.NoError(t, db.Where("entry_id = ?", entryID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, sport.ID, links[0].TagID)

	_, err = store.Upsert(user.ID, &EntryDraft{
		Date:     day(2024, time.March, 5),
		TimeSlot: models.SlotMorning,
	})
	require.NoError(t, err)
	require.NoError(t, db.Where("entry_id = ?", entryID).Find(&links).Error)
	assert.Empty(t, links, "empty set clears every tag")
}
