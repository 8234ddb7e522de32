package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infurnex/product-chat-connect/models"
)

// MockPreferenceRepository is a mock type for the PreferenceRepository interface
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) GetByUserID(userID string) (*models.UserPreferences, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

func (m *MockPreferenceRepository) Upsert(prefs *models.UserPreferences) (*models.UserPreferences, error) {
	args := m.Called(prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestPreferenceService_Get(t *testing.T) {
	t.Run("missing record yields defaults", func(t *testing.T) {
		mockRepo := new(MockPreferenceRepository)
		service := NewPreferenceService(mockRepo)

		mockRepo.On("GetByUserID", "user-1").Return(nil, nil).Once()

		prefs, err := service.Get("user-1")

		assert.NoError(t, err)
		assert.Equal(t, "user-1", prefs.UserID)
		assert.Equal(t, models.DefaultLanguage, prefs.Language)
		assert.Nil(t, prefs.Age)
	})

	t.Run("stored record is returned as-is with language backfilled", func(t *testing.T) {
		mockRepo := new(MockPreferenceRepository)
		service := NewPreferenceService(mockRepo)

		stored := &models.UserPreferences{ID: "pref-1", UserID: "user-1", Country: "India"}
		mockRepo.On("GetByUserID", "user-1").Return(stored, nil).Once()

		prefs, err := service.Get("user-1")

		assert.NoError(t, err)
		assert.Equal(t, "India", prefs.Country)
		assert.Equal(t, models.DefaultLanguage, prefs.Language)
	})

	t.Run("store failure is propagated", func(t *testing.T) {
		mockRepo := new(MockPreferenceRepository)
		service := NewPreferenceService(mockRepo)

		mockRepo.On("GetByUserID", "user-1").Return(nil, errors.New("db down")).Once()

		prefs, err := service.Get("user-1")

		assert.Nil(t, prefs)
		assert.Error(t, err)
	})
}

func TestPreferenceService_Update(t *testing.T) {
	t.Run("patch merges over the stored record", func(t *testing.T) {
		mockRepo := new(MockPreferenceRepository)
		service := NewPreferenceService(mockRepo)

		stored := &models.UserPreferences{
			ID:       "pref-1",
			UserID:   "user-1",
			Country:  "India",
			Language: "English",
			Budget:   floatPtr(500),
		}
		mockRepo.On("GetByUserID", "user-1").Return(stored, nil).Once()
		mockRepo.On("Upsert", mock.MatchedBy(func(p *models.UserPreferences) bool {
			return p.UserID == "user-1" &&
				p.Country == "Germany" && // patched
				p.Language == "English" && // untouched
				p.Budget != nil && *p.Budget == 500 && // untouched
				p.SustainabilityFocus // patched
		})).Return(stored, nil).Once()

		_, err := service.Update("user-1", PreferencePatch{
			Country:             strPtr("Germany"),
			SustainabilityFocus: boolPtr(true),
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("update without a stored record starts from defaults", func(t *testing.T) {
		mockRepo := new(MockPreferenceRepository)
		service := NewPreferenceService(mockRepo)

		mockRepo.On("GetByUserID", "user-2").Return(nil, nil).Once()
		mockRepo.On("Upsert", mock.MatchedBy(func(p *models.UserPreferences) bool {
			return p.UserID == "user-2" &&
				p.Language == models.DefaultLanguage &&
				p.Age != nil && *p.Age == 30
		})).Return(&models.UserPreferences{UserID: "user-2"}, nil).Once()

		_, err := service.Update("user-2", PreferencePatch{Age: intPtr(30)})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty user ID is rejected", func(t *testing.T) {
		service := NewPreferenceService(new(MockPreferenceRepository))

		_, err := service.Update("", PreferencePatch{})
		assert.Error(t, err)

		_, err = service.Get("")
		assert.Error(t, err)
	})
}
