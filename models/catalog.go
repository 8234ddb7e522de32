package models

// Category groups products recommended inside one chat. Rows are written by
// the external agent through the ingest endpoint; the public API only reads.
type Category struct {
	ID     string `json:"id" gorm:"primaryKey"`
	ChatID string `json:"chat_id" gorm:"index;not null"`
	Name   string `json:"name" gorm:"not null"`
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// Product is a single recommendation inside a category. Optional fields are
// pointers so "absent" survives the round trip to JSON as null instead of a
// zero value the UI would render as a real rating.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	CategoryID  string   `json:"category_id" gorm:"index;not null"`
	Name        string   `json:"name" gorm:"not null"`
	Seller      string   `json:"seller"`
	Price       float64  `json:"price"`
	Ratings     *float64 `json:"ratings"`
	Reviews     *int     `json:"reviews"`
	ImageURL    *string  `json:"image_url"`
	Description *string  `json:"description" gorm:"type:text"`
	Source      string   `json:"source"` // e.g. "Amazon", "Flipkart", "eBay"
}

// TableName specifies the table name for the Product model.
func (Product) TableName() string {
	return "products"
}
