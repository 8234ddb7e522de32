package models

import (
	"time"
)

// DefaultLanguage is applied when a user has no stored preference record.
const DefaultLanguage = "English"

// UserPreferences holds the optional demographic and shopping preferences of
// one user. At most one row exists per user (upsert keyed on user_id); the
// absence of a row is a valid state and callers fall back to defaults.
type UserPreferences struct {
	ID                  string    `json:"id" gorm:"primaryKey"`
	UserID              string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Name                string    `json:"name"`
	Gender              string    `json:"gender"`
	Country             string    `json:"country"`
	Language            string    `json:"language"`
	Age                 *int      `json:"age"`
	Budget              *float64  `json:"budget"`
	PreferredCategories string    `json:"preferred_categories"`
	PreferredBrands     string    `json:"preferred_brands"`
	SustainabilityFocus bool      `json:"sustainability_focus"`
	FastShipping        bool      `json:"fast_shipping"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the UserPreferences model.
func (UserPreferences) TableName() string {
	return "user_preferences"
}
