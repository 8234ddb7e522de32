package services

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/infurnex/product-chat-connect/events"
	"github.com/infurnex/product-chat-connect/models"
	"github.com/infurnex/product-chat-connect/repository"
)

// AllCategories is the category filter value meaning "every category of the
// chat". An empty filter means the same thing.
const AllCategories = "all"

// IngestCategory is one category of an agent catalog payload.
type IngestCategory struct {
	Name     string          `json:"name" binding:"required"`
	Products []IngestProduct `json:"products"`
}

// IngestProduct is one product of an agent catalog payload.
type IngestProduct struct {
	Name        string   `json:"name" binding:"required"`
	Seller      string   `json:"seller"`
	Price       float64  `json:"price"`
	Ratings     *float64 `json:"ratings"`
	Reviews     *int     `json:"reviews"`
	ImageURL    *string  `json:"image_url"`
	Description *string  `json:"description"`
	Source      string   `json:"source"`
}

// CatalogSnapshot is the cached catalog of a watched chat.
type CatalogSnapshot struct {
	Categories []*models.Category `json:"categories"`
	Products   []*models.Product  `json:"products"`
}

// CatalogService serves category and product reads, keeps live snapshots of
// watched chats fresh via the change feed, and accepts catalog writes from
// the external agent.
type CatalogService interface {
	Categories(chatID string) ([]*models.Category, error)
	Products(chatID string, categoryID string) ([]*models.Product, error)
	IngestCatalog(chatID string, categories []IngestCategory) error

	Watch(chatID string) error
	Unwatch(chatID string)
	Snapshot(chatID string) (*CatalogSnapshot, bool)
}

type catalogService struct {
	repo repository.CatalogRepository
	bus  *events.Bus

	mu        sync.Mutex
	watches   map[string]string // chatID -> bus subscription ID
	snapshots map[string]*CatalogSnapshot
}

// NewCatalogService creates a CatalogService publishing to and subscribing
// on the given change bus.
func NewCatalogService(repo repository.CatalogRepository, bus *events.Bus) CatalogService {
	return &catalogService{
		repo:      repo,
		bus:       bus,
		watches:   make(map[string]string),
		snapshots: make(map[string]*CatalogSnapshot),
	}
}

// Categories lists the categories the agent has written for a chat.
func (s *catalogService) Categories(chatID string) ([]*models.Category, error) {
	if chatID == "" {
		return nil, errors.New("chat ID must be provided")
	}
	return s.repo.GetCategoriesByChatID(chatID)
}

// Products lists products of one chat, optionally narrowed to one category.
func (s *catalogService) Products(chatID string, categoryID string) ([]*models.Product, error) {
	if chatID == "" {
		return nil, errors.New("chat ID must be provided")
	}
	if categoryID == "" || categoryID == AllCategories {
		return s.repo.GetProductsByChatID(chatID)
	}
	return s.repo.GetProductsByCategoryID(categoryID)
}

// IngestCatalog replaces a chat's catalog with the agent's payload and
// publishes change events for both tables. Rows are minimally validated:
// the agent sits on the far side of a trust boundary, so obviously broken
// rows (unnamed, negative price) are rejected before they reach the store.
func (s *catalogService) IngestCatalog(chatID string, categories []IngestCategory) error {
	if chatID == "" {
		return errors.New("chat ID must be provided")
	}

	catalog := make([]repository.CategoryWithProducts, 0, len(categories))
	for _, cat := range categories {
		if cat.Name == "" {
			return errors.New("category name must not be empty")
		}
		entry := repository.CategoryWithProducts{
			Category: models.Category{
				ID:     uuid.NewString(),
				ChatID: chatID,
				Name:   cat.Name,
			},
		}
		for _, p := range cat.Products {
			if p.Name == "" {
				return fmt.Errorf("product in category '%s' has no name", cat.Name)
			}
			if p.Price < 0 {
				return fmt.Errorf("product '%s' has a negative price", p.Name)
			}
			entry.Products = append(entry.Products, models.Product{
				ID:          uuid.NewString(),
				CategoryID:  entry.Category.ID,
				Name:        p.Name,
				Seller:      p.Seller,
				Price:       p.Price,
				Ratings:     p.Ratings,
				Reviews:     p.Reviews,
				ImageURL:    p.ImageURL,
				Description: p.Description,
				Source:      p.Source,
			})
		}
		catalog = append(catalog, entry)
	}

	if err := s.repo.ReplaceCatalog(chatID, catalog); err != nil {
		return err
	}

	s.bus.Publish(events.ChangeEvent{Table: "categories", ChatID: chatID, Action: events.ActionReplace})
	s.bus.Publish(events.ChangeEvent{Table: "products", ChatID: chatID, Action: events.ActionReplace})
	log.Printf("INFO: [CatalogService] Ingested catalog for chat %s (%d categories).", chatID, len(catalog))
	return nil
}

// Watch starts keeping a live snapshot for the chat: the snapshot is loaded
// now and re-queried on every categories/products change event that matches
// the chat (or carries no chat scope). Watching an already-watched chat just
// refreshes the snapshot.
func (s *catalogService) Watch(chatID string) error {
	if chatID == "" {
		return errors.New("chat ID must be provided")
	}

	s.mu.Lock()
	_, already := s.watches[chatID]
	s.mu.Unlock()

	if !already {
		subID := s.bus.Subscribe([]string{"categories", "products"}, func(evt events.ChangeEvent) {
			if evt.ChatID != "" && evt.ChatID != chatID {
				return
			}
			if err := s.refresh(chatID); err != nil {
				log.Printf("ERROR: [CatalogService] Failed to refresh snapshot for chat %s: %v", chatID, err)
			}
		})
		s.mu.Lock()
		s.watches[chatID] = subID
		s.mu.Unlock()
		log.Printf("INFO: [CatalogService] Watching catalog of chat %s (subscription %s).", chatID, subID)
	}

	return s.refresh(chatID)
}

// Unwatch stops the live snapshot of a chat and drops its cache.
func (s *catalogService) Unwatch(chatID string) {
	s.mu.Lock()
	subID, ok := s.watches[chatID]
	delete(s.watches, chatID)
	delete(s.snapshots, chatID)
	s.mu.Unlock()

	if ok {
		s.bus.Unsubscribe(subID)
		log.Printf("INFO: [CatalogService] Stopped watching catalog of chat %s.", chatID)
	}
}

// Snapshot returns the cached catalog of a watched chat. The second return
// is false when the chat is not watched.
func (s *catalogService) Snapshot(chatID string) (*CatalogSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[chatID]
	return snap, ok
}

func (s *catalogService) refresh(chatID string) error {
	categories, err := s.repo.GetCategoriesByChatID(chatID)
	if err != nil {
		return err
	}
	products, err := s.repo.GetProductsByChatID(chatID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshots[chatID] = &CatalogSnapshot{Categories: categories, Products: products}
	s.mu.Unlock()
	return nil
}
