package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/infurnex/product-chat-connect/models"
)

// CategoryWithProducts bundles a category row with its product rows for the
// transactional ingest path.
type CategoryWithProducts struct {
	Category models.Category
	Products []models.Product
}

// CatalogRepository defines the interface for interacting with category and
// product data. The public read side never writes; ReplaceCatalog exists
// only for the agent ingest path.
type CatalogRepository interface {
	GetCategoriesByChatID(chatID string) ([]*models.Category, error)
	GetProductsByChatID(chatID string) ([]*models.Product, error)
	GetProductsByCategoryID(categoryID string) ([]*models.Product, error)
	ReplaceCatalog(chatID string, catalog []CategoryWithProducts) error
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// GetCategoriesByChatID retrieves the categories of one chat, by name.
func (r *catalogRepository) GetCategoriesByChatID(chatID string) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.Where("chat_id = ?", chatID).Order("name asc").Find(&categories).Error
	if err != nil {
		log.Printf("ERROR: [CatalogRepository] Failed to retrieve categories for chat %s: %v", chatID, err)
		return nil, fmt.Errorf("failed to retrieve categories for chat %s: %w", chatID, err)
	}
	return categories, nil
}

// GetProductsByChatID retrieves every product across all categories of one
// chat, by name.
func (r *catalogRepository) GetProductsByChatID(chatID string) ([]*models.Product, error) {
	var products []*models.Product
	err := r.db.
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.chat_id = ?", chatID).
		Order("products.name asc").
		Find(&products).Error
	if err != nil {
		log.Printf("ERROR: [CatalogRepository] Failed to retrieve products for chat %s: %v", chatID, err)
		return nil, fmt.Errorf("failed to retrieve products for chat %s: %w", chatID, err)
	}
	return products, nil
}

// GetProductsByCategoryID retrieves the products of one category, by name.
func (r *catalogRepository) GetProductsByCategoryID(categoryID string) ([]*models.Product, error) {
	var products []*models.Product
	err := r.db.Where("category_id = ?", categoryID).Order("name asc").Find(&products).Error
	if err != nil {
		log.Printf("ERROR: [CatalogRepository] Failed to retrieve products for category %s: %v", categoryID, err)
		return nil, fmt.Errorf("failed to retrieve products for category %s: %w", categoryID, err)
	}
	return products, nil
}

// ReplaceCatalog swaps the entire catalog of a chat in one transaction: the
// chat's existing categories and their products are deleted, then the new
// rows are inserted. The agent resends the whole catalog on every update, so
// a replace keeps the store consistent without diffing.
func (r *catalogRepository) ReplaceCatalog(chatID string, catalog []CategoryWithProducts) error {
	if chatID == "" {
		log.Printf("ERROR: [CatalogRepository] ReplaceCatalog: chat ID must be provided")
		return errors.New("chat ID must be provided")
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existingIDs []string
		if err := tx.Model(&models.Category{}).Where("chat_id = ?", chatID).Pluck("id", &existingIDs).Error; err != nil {
			return fmt.Errorf("failed to list existing categories: %w", err)
		}
		if len(existingIDs) > 0 {
			if err := tx.Where("category_id IN ?", existingIDs).Delete(&models.Product{}).Error; err != nil {
				return fmt.Errorf("failed to delete existing products: %w", err)
			}
			if err := tx.Where("chat_id = ?", chatID).Delete(&models.Category{}).Error; err != nil {
				return fmt.Errorf("failed to delete existing categories: %w", err)
			}
		}
		for i := range catalog {
			if err := tx.Create(&catalog[i].Category).Error; err != nil {
				return fmt.Errorf("failed to create category '%s': %w", catalog[i].Category.Name, err)
			}
			if len(catalog[i].Products) > 0 {
				if err := tx.Create(&catalog[i].Products).Error; err != nil {
					return fmt.Errorf("failed to create products of category '%s': %w", catalog[i].Category.Name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: [CatalogRepository] Failed to replace catalog for chat %s: %v", chatID, err)
		return fmt.Errorf("failed to replace catalog for chat %s: %w", chatID, err)
	}
	log.Printf("INFO: [CatalogRepository] Replaced catalog for chat %s with %d categories.", chatID, len(catalog))
	return nil
}
