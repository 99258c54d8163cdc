package store

import (
	"github.com/engineq/engineq/models"
	"gorm.io/gorm"
)

type PromptStore interface {
	CreateTable() error
	Create(fr *models.PromptDBModel) error
	GetMany(whereQuery string, whereArgs ...interface{}) ([]models.PromptDBModel, error)
	Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error
	Delete(whereQuery string, whereArgs ...interface{}) error
	DB() *gorm.DB
}

type promptStore struct {
	db *gorm.DB
}

func NewPromptStore(db *gorm.DB) PromptStore {
	return &promptStore{
		db: db,
	}
}

func (ps *promptStore) table() string {
	return "prompts"
}

func (ps *promptStore) DB() *gorm.DB {
	return ps.db
}

func (ps *promptStore) CreateTable() error {
	return ps.db.Table(ps.table()).AutoMigrate(models.PromptDBModel{})
}

func (ps *promptStore) Create(fr *models.PromptDBModel) error {
	return ps.db.Table(ps.table()).Create(fr).Error
}

func (ps *promptStore) GetMany(whereQuery string, whereArgs ...interface{}) ([]models.PromptDBModel, error) {
	var prompts []models.PromptDBModel

	if err := ps.db.Table(ps.table()).Where(whereQuery, whereArgs...).Order("prompt_id ASC").Find(&prompts).Error; err != nil {
		return nil, err
	}

	return prompts, nil
}

func (ps *promptStore) Update(updateMap map[string]any, whereQuery string, whereArgs ...interface{}) error {
	return ps.db.Table(ps.table()).Where(whereQuery, whereArgs...).Updates(updateMap).Error
}

func (ps *promptStore) Delete(whereQuery string, whereArgs ...interface{}) error {
	return ps.db.Table(ps.table()).Where(whereQuery, whereArgs...).Delete(nil).Error
}
