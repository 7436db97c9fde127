package models

import "time"

// Preference is one persisted client setting, such as the theme.
type Preference struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}
