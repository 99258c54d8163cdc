package store

import (
	"errors"

	"github.com/engineq/engineq/models"
	"gorm.io/gorm"
)

type TrackStore interface {
	CreateTable() error
	Create(fr *models.TrackDBModel) error
	CreateInBatches(tracks []models.TrackDBModel) error
	GetOne(whereQuery string, whereArgs ...interface{}) (*models.TrackDBModel, error)
	GetMany(fields []string, whereQuery string, whereArgs ...interface{}) ([]models.TrackDBModel, error)
	Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error
	Delete(whereQuery string, whereArgs ...interface{}) error
	IsExists(whereQuery string, whereArgs ...interface{}) (bool, error)
	DB() *gorm.DB
}

type trackStore struct {
	db *gorm.DB
}

func NewTrackStore(db *gorm.DB) TrackStore {
	return &trackStore{
		db: db,
	}
}

func (ts *trackStore) table() string {
	return "tracks"
}

func (ts *trackStore) DB() *gorm.DB {
	return ts.db
}

func (ts *trackStore) CreateTable() error {
	return ts.db.Table(ts.table()).AutoMigrate(models.TrackDBModel{})
}

func (ts *trackStore) Create(fr *models.TrackDBModel) error {
	return ts.db.Table(ts.table()).Create(fr).Error
}

func (ts *trackStore) CreateInBatches(tracks []models.TrackDBModel) error {
	return ts.db.Table(ts.table()).CreateInBatches(tracks, len(tracks)).Error
}

func (ts *trackStore) GetOne(whereQuery string, whereArgs ...interface{}) (*models.TrackDBModel, error) {
	var track models.TrackDBModel
	if err := ts.db.Table(ts.table()).Where(whereQuery, whereArgs...).First(&track).Error; err != nil {
		return nil, err
	}

	return &track, nil
}

func (ts *trackStore) GetMany(fields []string, whereQuery string, whereArgs ...interface{}) ([]models.TrackDBModel, error) {
	var tracks []models.TrackDBModel

	if err := ts.db.Table(ts.table()).Select(fields).Where(whereQuery, whereArgs...).Find(&tracks).Error; err != nil {
		return nil, err
	}

	return tracks, nil
}

func (ts *trackStore) Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error {
	return ts.db.Table(ts.table()).Where(whereQuery, whereArgs...).Updates(updateMap).Error
}

func (ts *trackStore) Delete(whereQuery string, whereArgs ...interface{}) error {
	return ts.db.Table(ts.table()).Where(whereQuery, whereArgs...).Delete(nil).Error
}

func (ts *trackStore) IsExists(whereQuery string, whereArgs ...interface{}) (bool, error) {

	type Res struct {
		IsExists bool
	}

	var res Res

	if err := ts.db.Table(ts.table()).Select("1 = 1 AS is_exists").Where(whereQuery, whereArgs...).Find(&res).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	return res.IsExists, nil
}
