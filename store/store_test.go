package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/engineq/engineq/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory sqlite database with the tables migrated.
// A single connection keeps the in-memory database alive across queries.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, createTable := range []func() error{
		NewSubscriberStore(db).CreateTable,
		NewPlaylistStore(db).CreateTable,
		NewTrackStore(db).CreateTable,
		NewSuggestionStore(db).CreateTable,
		NewPlaybackStore(db).CreateTable,
		NewPromptStore(db).CreateTable,
	} {
		if err := createTable(); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
	}

	return db
}

// seedPlaylist creates a playlist with n suggestions whose added_at advances
// one minute per suggestion. Returns the playlist id and the suggestions in
// added_at order.
func seedPlaylist(t *testing.T, db *gorm.DB, subscriberID string, n int) (string, []models.SuggestionDBModel) {
	t.Helper()

	playlistID := uuid.NewString()
	if err := NewPlaylistStore(db).Create(models.PlaylistDBModel{
		PlaylistID:   playlistID,
		SubscriberID: subscriberID,
		Day:          time.Now().Format("2006-01-02"),
		Name:         "Daily Mix",
	}); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}

	trackStore := NewTrackStore(db)
	suggestionStore := NewSuggestionStore(db)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	suggestions := []models.SuggestionDBModel{}

	for i := 0; i < n; i++ {
		track := models.TrackDBModel{
			Title:        fmt.Sprintf("Track %02d", i),
			Artist:       "Artist",
			Duration:     "3:00",
			DurationSecs: 180,
			TrackURI:     fmt.Sprintf("https://example.com/t/%d", i),
		}
		if err := trackStore.Create(&track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		suggestion := models.SuggestionDBModel{
			SuggestionID: uuid.NewString(),
			PlaylistID:   playlistID,
			TrackID:      track.TrackID,
			AddedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := suggestionStore.Create(suggestion); err != nil {
			t.Fatalf("failed to create suggestion: %v", err)
		}

		suggestions = append(suggestions, suggestion)
	}

	return playlistID, suggestions
}

func TestSuggestionStore(t *testing.T) {
	t.Run("ListUnplayedWithoutCursor", func(t *testing.T) {
		db := setupTestDB(t)
		playlistID, suggestions := seedPlaylist(t, db, uuid.NewString(), 15)

		items, err := NewSuggestionStore(db).ListUnplayed(playlistID, nil)
		if err != nil {
			t.Fatalf("failed to list unplayed: %v", err)
		}

		if len(items) != 15 {
			t.Fatalf("unplayed count = %d, want 15", len(items))
		}

		for i, it := range items {
			if it.SuggestionID != suggestions[i].SuggestionID {
				t.Fatalf("item %d out of added_at order", i)
			}
			if it.Title == "" || it.TrackURI == "" {
				t.Fatalf("item %d missing track display fields: %+v", i, it)
			}
		}
	})

	t.Run("ListUnplayedAfterCursor", func(t *testing.T) {
		db := setupTestDB(t)
		playlistID, suggestions := seedPlaylist(t, db, uuid.NewString(), 15)

		// cursor on the 7th suggestion leaves the 8 added strictly after it
		cursor := suggestions[6].AddedAt
		items, err := NewSuggestionStore(db).ListUnplayed(playlistID, &cursor)
		if err != nil {
			t.Fatalf("failed to list unplayed: %v", err)
		}

		if len(items) != 8 {
			t.Fatalf("unplayed count = %d, want 8", len(items))
		}
		if items[0].SuggestionID != suggestions[7].SuggestionID {
			t.Fatalf("first unplayed = %s, want the suggestion after the cursor", items[0].SuggestionID)
		}
	})

	t.Run("CountMatchesListForEveryCursor", func(t *testing.T) {
		db := setupTestDB(t)
		playlistID, suggestions := seedPlaylist(t, db, uuid.NewString(), 12)

		suggestionStore := NewSuggestionStore(db)

		cursors := []*time.Time{nil}
		for i := range suggestions {
			cursors = append(cursors, &suggestions[i].AddedAt)
		}

		for i, cursor := range cursors {
			items, err := suggestionStore.ListUnplayed(playlistID, cursor)
			if err != nil {
				t.Fatalf("list with cursor %d: %v", i, err)
			}

			count, err := suggestionStore.CountUnplayed(playlistID, cursor)
			if err != nil {
				t.Fatalf("count with cursor %d: %v", i, err)
			}

			if int64(len(items)) != count {
				t.Fatalf("cursor %d: list has %d items but count is %d", i, len(items), count)
			}
		}
	})

	t.Run("ScopedToPlaylist", func(t *testing.T) {
		db := setupTestDB(t)
		playlistID, _ := seedPlaylist(t, db, uuid.NewString(), 5)
		otherID, _ := seedPlaylist(t, db, uuid.NewString(), 3)

		items, err := NewSuggestionStore(db).ListUnplayed(playlistID, nil)
		if err != nil {
			t.Fatalf("failed to list unplayed: %v", err)
		}
		if len(items) != 5 {
			t.Fatalf("unplayed count = %d, want 5", len(items))
		}

		other, err := NewSuggestionStore(db).ListUnplayed(otherID, nil)
		if err != nil {
			t.Fatalf("failed to list unplayed: %v", err)
		}
		if len(other) != 3 {
			t.Fatalf("unplayed count = %d, want 3", len(other))
		}
	})

	t.Run("GeneratedTotals", func(t *testing.T) {
		db := setupTestDB(t)
		subscriberID := uuid.NewString()
		seedPlaylist(t, db, subscriberID, 4)

		secondsSum, countSum, err := NewSuggestionStore(db).GeneratedTotals(subscriberID)
		if err != nil {
			t.Fatalf("failed to compute totals: %v", err)
		}

		if countSum != 4 {
			t.Fatalf("count sum = %d, want 4", countSum)
		}
		if secondsSum != 4*180 {
			t.Fatalf("seconds sum = %d, want %d", secondsSum, 4*180)
		}
	})
}

func TestPlaybackStore(t *testing.T) {
	t.Run("UpsertInsertsThenUpdates", func(t *testing.T) {
		db := setupTestDB(t)
		playbackStore := NewPlaybackStore(db)
		subscriberID := uuid.NewString()

		if err := playbackStore.Upsert(subscriberID, "sug-1"); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		playback, err := playbackStore.GetOne("subscriber_id = ?", subscriberID)
		if err != nil {
			t.Fatalf("failed to get playback: %v", err)
		}
		if playback.SuggestionID != "sug-1" {
			t.Fatalf("ledger = %s, want sug-1", playback.SuggestionID)
		}

		if err := playbackStore.Upsert(subscriberID, "sug-2"); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		playback, err = playbackStore.GetOne("subscriber_id = ?", subscriberID)
		if err != nil {
			t.Fatalf("failed to get playback: %v", err)
		}
		if playback.SuggestionID != "sug-2" {
			t.Fatalf("ledger = %s, want sug-2", playback.SuggestionID)
		}
	})

	t.Run("UpsertIsIdempotent", func(t *testing.T) {
		db := setupTestDB(t)
		playbackStore := NewPlaybackStore(db)
		subscriberID := uuid.NewString()

		for i := 0; i < 3; i++ {
			if err := playbackStore.Upsert(subscriberID, "sug-1"); err != nil {
				t.Fatalf("failed to upsert: %v", err)
			}
		}

		var count int64
		if err := playbackStore.DB().Table("playback").Where("subscriber_id = ?", subscriberID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Fatalf("ledger rows = %d, want exactly one per subscriber", count)
		}

		playback, err := playbackStore.GetOne("subscriber_id = ?", subscriberID)
		if err != nil {
			t.Fatalf("failed to get playback: %v", err)
		}
		if playback.SuggestionID != "sug-1" {
			t.Fatalf("ledger = %s, want sug-1", playback.SuggestionID)
		}
	})
}
