package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monorkin/iot-dashboard/internal/models"
)

// LocalStorage is a string key/value store over the preferences table.
type LocalStorage struct {
	db *gorm.DB
}

func NewLocalStorage(db *gorm.DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// GetItem returns the stored value and whether the key exists.
func (storage *LocalStorage) GetItem(key string) (string, bool, error) {
	var preference models.Preference

	err := storage.db.Where("key = ?", key).Take(&preference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %q: %w", key, err)
	}

	return preference.Value, true, nil
}

func (storage *LocalStorage) SetItem(key string, value string) error {
	preference := models.Preference{Key: key, Value: value, UpdatedAt: time.Now()}

	err := storage.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&preference).Error
	if err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}

	return nil
}

func (storage *LocalStorage) RemoveItem(key string) error {
	if err := storage.db.Delete(&models.Preference{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove preference %q: %w", key, err)
	}
	return nil
}
