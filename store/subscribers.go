package store

import (
	"errors"

	"github.com/engineq/engineq/models"
	"gorm.io/gorm"
)

type SubscriberStore interface {
	CreateTable() error
	Create(fr models.SubscriberDBModel) error
	GetOne(whereQuery string, whereArgs ...interface{}) (*models.SubscriberDBModel, error)
	Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error
	Delete(whereQuery string, whereArgs ...interface{}) error
	IsExists(whereQuery string, whereArgs ...interface{}) (bool, error)
	DB() *gorm.DB
}

type subscriberStore struct {
	db *gorm.DB
}

func NewSubscriberStore(db *gorm.DB) SubscriberStore {
	return &subscriberStore{
		db: db,
	}
}

func (ss *subscriberStore) table() string {
	return "subscribers"
}

func (ss *subscriberStore) DB() *gorm.DB {
	return ss.db
}

func (ss *subscriberStore) CreateTable() error {
	return ss.db.Table(ss.table()).AutoMigrate(models.SubscriberDBModel{})
}

func (ss *subscriberStore) Create(fr models.SubscriberDBModel) error {
	return ss.db.Table(ss.table()).Create(fr).Error
}

func (ss *subscriberStore) GetOne(whereQuery string, whereArgs ...interface{}) (*models.SubscriberDBModel, error) {
	var subscriber models.SubscriberDBModel
	if err := ss.db.Table(ss.table()).Where(whereQuery, whereArgs...).First(&subscriber).Error; err != nil {
		return nil, err
	}

	return &subscriber, nil
}

func (ss *subscriberStore) Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error {
	return ss.db.Table(ss.table()).Where(whereQuery, whereArgs...).Updates(updateMap).Error
}

func (ss *subscriberStore) Delete(whereQuery string, whereArgs ...interface{}) error {
	return ss.db.Table(ss.table()).Where(whereQuery, whereArgs...).Delete(nil).Error
}

func (ss *subscriberStore) IsExists(whereQuery string, whereArgs ...interface{}) (bool, error) {

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
