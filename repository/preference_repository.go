package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/infurnex/product-chat-connect/models"
)

// PreferenceRepository defines the interface for interacting with the
// per-user preference record.
type PreferenceRepository interface {
	GetByUserID(userID string) (*models.UserPreferences, error)
	Upsert(prefs *models.UserPreferences) (*models.UserPreferences, error)
}

type preferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new instance of PreferenceRepository.
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// GetByUserID retrieves the preference record of a user. A missing record is
// a valid state and is returned as (nil, nil); the caller applies defaults.
func (r *preferenceRepository) GetByUserID(userID string) (*models.UserPreferences, error) {
	if userID == "" {
		log.Printf("ERROR: [PreferenceRepository] GetByUserID: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}
	var prefs models.UserPreferences
	err := r.db.First(&prefs, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [PreferenceRepository] No preference record for userID %s.", userID)
			return nil, nil
		}
		log.Printf("ERROR: [PreferenceRepository] Failed to fetch preferences for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch preferences for userID %s: %w", userID, err)
	}
	return &prefs, nil
}

// Upsert inserts or updates the single preference row of a user, keyed on
// user_id. The row's user_id and created_at never change on conflict.
func (r *preferenceRepository) Upsert(prefs *models.UserPreferences) (*models.UserPreferences, error) {
	if prefs == nil {
		log.Printf("ERROR: [PreferenceRepository] Upsert: prefs cannot be nil")
		return nil, errors.New("preferences cannot be nil")
	}
	if prefs.UserID == "" {
		log.Printf("ERROR: [PreferenceRepository] Upsert: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "gender", "country", "language", "age", "budget",
			"preferred_categories", "preferred_brands",
			"sustainability_focus", "fast_shipping", "updated_at",
		}),
	}).Create(prefs).Error
	if err != nil {
		log.Printf("ERROR: [PreferenceRepository] Failed to upsert preferences for userID %s: %v", prefs.UserID, err)
		return nil, fmt.Errorf("failed to upsert preferences for userID %s: %w", prefs.UserID, err)
	}

	log.Printf("INFO: [PreferenceRepository] Upserted preferences for userID %s.", prefs.UserID)
	return r.GetByUserID(prefs.UserID)
}
