package services

import (
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/infurnex/product-chat-connect/models"
	"github.com/infurnex/product-chat-connect/repository"
)

// PreferencePatch carries the fields a preference update provides. Nil
// pointers mean "leave this field as it is".
type PreferencePatch struct {
	Name                *string  `json:"name"`
	Gender              *string  `json:"gender"`
	Country             *string  `json:"country"`
	Language            *string  `json:"language"`
	Age                 *int     `json:"age"`
	Budget              *float64 `json:"budget"`
	PreferredCategories *string  `json:"preferred_categories"`
	PreferredBrands     *string  `json:"preferred_brands"`
	SustainabilityFocus *bool    `json:"sustainability_focus"`
	FastShipping        *bool    `json:"fast_shipping"`
}

// PreferenceService reads and upserts the per-user preference record.
type PreferenceService interface {
	// Get returns the user's stored preferences, or a defaults-only record
	// when none exists.
	Get(userID string) (*models.UserPreferences, error)
	// Update merges the patch over the stored record (or the defaults) and
	// upserts the result.
	Update(userID string, patch PreferencePatch) (*models.UserPreferences, error)
}

type preferenceService struct {
	repo repository.PreferenceRepository
}

// NewPreferenceService creates a PreferenceService over the given repository.
func NewPreferenceService(repo repository.PreferenceRepository) PreferenceService {
	return &preferenceService{repo: repo}
}

func (s *preferenceService) Get(userID string) (*models.UserPreferences, error) {
	if userID == "" {
		return nil, errors.New("user ID must be provided")
	}
	prefs, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		log.Printf("INFO: [PreferenceService] No stored preferences for userID %s, returning defaults.", userID)
		return defaultPreferences(userID), nil
	}
	if prefs.Language == "" {
		prefs.Language = models.DefaultLanguage
	}
	return prefs, nil
}

func (s *preferenceService) Update(userID string, patch PreferencePatch) (*models.UserPreferences, error) {
	if userID == "" {
		return nil, errors.New("user ID must be provided")
	}

	current, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = defaultPreferences(userID)
	}

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Gender != nil {
		current.Gender = *patch.Gender
	}
	if patch.Country != nil {
		current.Country = *patch.Country
	}
	if patch.Language != nil && *patch.Language != "" {
		current.Language = *patch.Language
	}
	if patch.Age != nil {
		current.Age = patch.Age
	}
	if patch.Budget != nil {
		current.Budget = patch.Budget
	}
	if patch.PreferredCategories != nil {
		current.PreferredCategories = *patch.PreferredCategories
	}
	if patch.PreferredBrands != nil {
		current.PreferredBrands = *patch.PreferredBrands
	}
	if patch.SustainabilityFocus != nil {
		current.SustainabilityFocus = *patch.SustainabilityFocus
	}
	if patch.FastShipping != nil {
		current.FastShipping = *patch.FastShipping
	}

	return s.repo.Upsert(current)
}

func defaultPreferences(userID string) *models.UserPreferences {
	return &models.UserPreferences{
		ID:       uuid.NewString(),
		UserID:   userID,
		Language: models.DefaultLanguage,
	}
}
