package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/infurnex/product-chat-connect/events"
	"github.com/infurnex/product-chat-connect/models"
	"github.com/infurnex/product-chat-connect/repository"
)

// MockCatalogRepository is a mock type for the CatalogRepository interface
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetCategoriesByChatID(chatID string) ([]*models.Category, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCatalogRepository) GetProductsByChatID(chatID string) ([]*models.Product, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetProductsByCategoryID(categoryID string) ([]*models.Product, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockCatalogRepository) ReplaceCatalog(chatID string, catalog []repository.CategoryWithProducts) error {
	args := m.Called(chatID, catalog)
	return args.Error(0)
}

func TestCatalogService_Products(t *testing.T) {
	chatProducts := []*models.Product{{ID: "p1", Name: "Sneaker"}}
	categoryProducts := []*models.Product{{ID: "p2", Name: "Boot"}}

	t.Run("empty and 'all' category filters span the whole chat", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		service := NewCatalogService(mockRepo, events.NewBus())
		mockRepo.On("GetProductsByChatID", "chat-1").Return(chatProducts, nil).Twice()

		products, err := service.Products("chat-1", "")
		assert.NoError(t, err)
		assert.Equal(t, chatProducts, products)

		products, err = service.Products("chat-1", AllCategories)
		assert.NoError(t, err)
		assert.Equal(t, chatProducts, products)

		mockRepo.AssertNotCalled(t, "GetProductsByCategoryID", mock.Anything)
	})

	t.Run("a concrete category narrows the query", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		service := NewCatalogService(mockRepo, events.NewBus())
		mockRepo.On("GetProductsByCategoryID", "cat-1").Return(categoryProducts, nil).Once()

		products, err := service.Products("chat-1", "cat-1")
		assert.NoError(t, err)
		assert.Equal(t, categoryProducts, products)
	})
}

func TestCatalogService_IngestCatalog(t *testing.T) {
	payload := []IngestCategory{
		{
			Name: "Laptops",
			Products: []IngestProduct{
				{Name: "Premium Laptop Pro", Seller: "TechMart", Price: 1299.99, Source: "Amazon"},
				{Name: "Student Budget Notebook", Seller: "EduStore", Price: 499.99, Source: "Flipkart"},
			},
		},
	}

	t.Run("replaces the chat catalog and publishes both change events", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		bus := events.NewBus()
		service := NewCatalogService(mockRepo, bus)

		received := make(chan events.ChangeEvent, 4)
		bus.Subscribe([]string{"categories", "products"}, func(evt events.ChangeEvent) {
			received <- evt
		})

		mockRepo.On("ReplaceCatalog", "chat-1", mock.MatchedBy(func(catalog []repository.CategoryWithProducts) bool {
			if len(catalog) != 1 || catalog[0].Category.Name != "Laptops" || catalog[0].Category.ChatID != "chat-1" {
				return false
			}
			if len(catalog[0].Products) != 2 {
				return false
			}
			return catalog[0].Products[0].CategoryID == catalog[0].Category.ID
		})).Return(nil).Once()

		err := service.IngestCatalog("chat-1", payload)
		assert.NoError(t, err)

		tables := map[string]bool{}
		for i := 0; i < 2; i++ {
			select {
			case evt := <-received:
				assert.Equal(t, "chat-1", evt.ChatID)
				assert.Equal(t, events.ActionReplace, evt.Action)
				tables[evt.Table] = true
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for change events")
			}
		}
		assert.True(t, tables["categories"])
		assert.True(t, tables["products"])
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects unnamed categories and negative prices", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		service := NewCatalogService(mockRepo, events.NewBus())

		err := service.IngestCatalog("chat-1", []IngestCategory{{Name: ""}})
		assert.Error(t, err)

		err = service.IngestCatalog("chat-1", []IngestCategory{
			{Name: "Laptops", Products: []IngestProduct{{Name: "Broken", Price: -1}}},
		})
		assert.Error(t, err)

		mockRepo.AssertNotCalled(t, "ReplaceCatalog", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_Watch(t *testing.T) {
	categories := []*models.Category{{ID: "cat-1", ChatID: "chat-1", Name: "Laptops"}}
	products := []*models.Product{{ID: "p1", CategoryID: "cat-1", Name: "Premium Laptop Pro"}}

	t.Run("watch loads a snapshot and re-queries on matching events", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		bus := events.NewBus()
		service := NewCatalogService(mockRepo, bus)

		var categoryReads atomic.Int32
		mockRepo.On("GetCategoriesByChatID", "chat-1").Run(func(args mock.Arguments) {
			categoryReads.Add(1)
		}).Return(categories, nil)
		mockRepo.On("GetProductsByChatID", "chat-1").Return(products, nil)

		assert.NoError(t, service.Watch("chat-1"))

		snap, ok := service.Snapshot("chat-1")
		assert.True(t, ok)
		assert.Equal(t, categories, snap.Categories)
		assert.Equal(t, products, snap.Products)
		assert.Equal(t, int32(1), categoryReads.Load())

		bus.Publish(events.ChangeEvent{Table: "products", ChatID: "chat-1", Action: events.ActionReplace})

		assert.Eventually(t, func() bool {
			return categoryReads.Load() >= 2
		}, time.Second, 10*time.Millisecond, "expected a re-query after the change event")
	})

	t.Run("events for other chats do not trigger a re-query", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		bus := events.NewBus()
		service := NewCatalogService(mockRepo, bus)

		mockRepo.On("GetCategoriesByChatID", "chat-1").Return(categories, nil)
		mockRepo.On("GetProductsByChatID", "chat-1").Return(products, nil)

		assert.NoError(t, service.Watch("chat-1"))
		bus.Publish(events.ChangeEvent{Table: "products", ChatID: "chat-other", Action: events.ActionReplace})

		time.Sleep(50 * time.Millisecond)
		mockRepo.AssertNumberOfCalls(t, "GetCategoriesByChatID", 1)
	})

	t.Run("unwatch drops the snapshot and stops refreshing", func(t *testing.T) {
		mockRepo := new(MockCatalogRepository)
		bus := events.NewBus()
		service := NewCatalogService(mockRepo, bus)

		mockRepo.On("GetCategoriesByChatID", "chat-1").Return(categories, nil)
		mockRepo.On("GetProductsByChatID", "chat-1").Return(products, nil)

		assert.NoError(t, service.Watch("chat-1"))
		service.Unwatch("chat-1")

		_, ok := service.Snapshot("chat-1")
		assert.False(t, ok)

		bus.Publish(events.ChangeEvent{Table: "categories", ChatID: "chat-1", Action: events.ActionReplace})
		time.Sleep(50 * time.Millisecond)
		mockRepo.AssertNumberOfCalls(t, "GetCategoriesByChatID", 1)
	})
}
