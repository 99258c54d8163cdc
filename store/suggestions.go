package store

import (
	"errors"
	"time"

	"github.com/engineq/engineq/models"
	"gorm.io/gorm"
)

type SuggestionStore interface {
	CreateTable() error
	Create(fr models.SuggestionDBModel) error
	CreateInBatches(suggestions []models.SuggestionDBModel) error
	GetOne(whereQuery string, whereArgs ...interface{}) (*models.SuggestionDBModel, error)
	Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error
	Delete(whereQuery string, whereArgs ...interface{}) error
	IsExists(whereQuery string, whereArgs ...interface{}) (bool, error)
	ListUnplayed(playlistID string, after *time.Time) ([]models.QueueItem, error)
	CountUnplayed(playlistID string, after *time.Time) (int64, error)
	GeneratedTotals(subscriberID string) (secondsSum int64, countSum int64, err error)
	DB() *gorm.DB
}

type suggestionStore struct {
	db *gorm.DB
}

func NewSuggestionStore(db *gorm.DB) SuggestionStore {
	return &suggestionStore{
		db: db,
	}
}

func (ss *suggestionStore) table() string {
	return "suggestions"
}

func (ss *suggestionStore) DB() *gorm.DB {
	return ss.db
}

func (ss *suggestionStore) CreateTable() error {
	return ss.db.Table(ss.table()).AutoMigrate(models.SuggestionDBModel{})
}

func (ss *suggestionStore) Create(fr models.SuggestionDBModel) error {
	return ss.db.Table(ss.table()).Create(fr).Error
}

func (ss *suggestionStore) CreateInBatches(suggestions []models.SuggestionDBModel) error {
	return ss.db.Table(ss.table()).CreateInBatches(suggestions, len(suggestions)).Error
}

func (ss *suggestionStore) GetOne(whereQuery string, whereArgs ...interface{}) (*models.SuggestionDBModel, error) {
	var suggestion models.SuggestionDBModel
	if err := ss.db.Table(ss.table()).Where(whereQuery, whereArgs...).First(&suggestion).Error; err != nil {
		return nil, err
	}

	return &suggestion, nil
}

func (ss *suggestionStore) Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error {
	return ss.db.Table(ss.table()).Where(whereQuery, whereArgs...).Updates(updateMap).Error
}

func (ss *suggestionStore) Delete(whereQuery string, whereArgs ...interface{}) error {
	return ss.db.Table(ss.table()).Where(whereQuery, whereArgs...).Delete(nil).Error
}

func (ss *suggestionStore) IsExists(whereQuery string, whereArgs ...interface{}) (bool, error) {

	type Res struct {
		IsExists bool
	}

	var res Res

	if err := ss.db.Table(ss.table()).Select("1 = 1 AS is_exists").Where(whereQuery, whereArgs...).Find(&res).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	return res.IsExists, nil
}

// ListUnplayed returns the playlist's suggestions joined with their track's
// display fields, ascending by added_at. A non-nil cursor keeps only
// suggestions added strictly after it.
func (ss *suggestionStore) ListUnplayed(playlistID string, after *time.Time) ([]models.QueueItem, error) {
	items := []models.QueueItem{}

	q := ss.unplayedQuery(playlistID, after).
		Select("tracks.track_id, tracks.title, tracks.artist, tracks.duration, tracks.image, tracks.track_uri, tracks.explicit, suggestions.suggestion_id, suggestions.added_at").
		Joins("JOIN tracks ON tracks.track_id = suggestions.track_id").
		Order("suggestions.added_at ASC")

	if err := q.Scan(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

// CountUnplayed counts with the exact same cursor condition as ListUnplayed.
func (ss *suggestionStore) CountUnplayed(playlistID string, after *time.Time) (int64, error) {
	var count int64

	if err := ss.unplayedQuery(playlistID, after).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// GeneratedTotals aggregates the duration and count of every suggestion ever
// generated for the subscriber, across all of their playlists.
func (ss *suggestionStore) GeneratedTotals(subscriberID string) (int64, int64, error) {

	type Res struct {
		SecondsSum int64
		CountSum   int64
	}

	var res Res

	if err := ss.db.Table(ss.table()).
		Select("COALESCE(SUM(tracks.duration_secs), 0) AS seconds_sum, COUNT(tracks.track_id) AS count_sum").
		Joins("JOIN tracks ON tracks.track_id = suggestions.track_id").
		Joins("JOIN playlists ON playlists.playlist_id = suggestions.playlist_id").
		Where("playlists.subscriber_id = ?", subscriberID).
		Scan(&res).Error; err != nil {
		return 0, 0, err
	}

	return res.SecondsSum, res.CountSum, nil
}

func (ss *suggestionStore) unplayedQuery(playlistID string, after *time.Time) *gorm.DB {
	q := ss.db.Table(ss.table()).Where("suggestions.playlist_id = ?", playlistID)

	if after != nil {
		q = q.Where("suggestions.added_at > ?", *after)
	}

	return q
}
