package store

import (
	"errors"

	"github.com/engineq/engineq/models"
	"gorm.io/gorm"
)

type PlaylistStore interface {
	CreateTable() error
	Create(fr models.PlaylistDBModel) error
	GetOne(whereQuery string, whereArgs ...interface{}) (*models.PlaylistDBModel, error)
	Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error
	Delete(whereQuery string, whereArgs ...interface{}) error
	IsExists(whereQuery string, whereArgs ...interface{}) (bool, error)
	DB() *gorm.DB
}

type playlistStore struct {
	db *gorm.DB
}

func NewPlaylistStore(db *gorm.DB) PlaylistStore {
	return &playlistStore{
		db: db,
	}
}

func (ps *playlistStore) table() string {
	return "playlists"
}

func (ps *playlistStore) DB() *gorm.DB {
	return ps.db
}

func (ps *playlistStore) CreateTable() error {
	return ps.db.Table(ps.table()).AutoMigrate(models.PlaylistDBModel{})
}

func (ps *playlistStore) Create(fr models.PlaylistDBModel) error {
	return ps.db.Table(ps.table()).Create(fr).Error
}

func (ps *playlistStore) GetOne(whereQuery string, whereArgs ...interface{}) (*models.PlaylistDBModel, error) {
	var playlist models.PlaylistDBModel
	if err := ps.db.Table(ps.table()).Where(whereQuery, whereArgs...).First(&playlist).Error; err != nil {
		return nil, err
	}

	return &playlist, nil
}

func (ps *playlistStore) Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error {
	return ps.db.Table(ps.table()).Where(whereQuery, whereArgs...).Updates(updateMap).Error
}

func (ps *playlistStore) Delete(whereQuery string, whereArgs ...interface{}) error {
	return ps.db.Table(ps.table()).Where(whereQuery, whereArgs...).Delete(nil).Error
}

func (ps *playlistStore) IsExists(whereQuery string, whereArgs ...interface{}) (bool, error) {

	type Res struct {
		IsExists bool
	}

	var res Res

	if err := ps.db.Table(ps.table()).Select("1 = 1 AS is_exists").Where(whereQuery, whereArgs...).Find(&res).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	return res.IsExists, nil
}
