package types

import "time"

// Product is a catalog entry. Prices are in Kenyan shillings.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	CategoryID  int     `json:"category_id"`
	BasePrice   float64 `json:"base_price"`

	// StockQuantity is only reported by admin listings.
	StockQuantity *int `json:"stock_quantity,omitempty"`

	IsActive   bool       `json:"is_active"`
	IsFeatured bool       `json:"is_featured"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ProductImage is one image attached to a product.
type ProductImage struct {
	ID           int    `json:"id"`
	ProductID    int    `json:"product_id"`
	ImageURL     string `json:"image_url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
	IsPrimary    bool   `json:"is_primary"`
}

// Category groups products. ParentID is nil for top-level categories.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    *int      `json:"parent_id"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductsResponse is the product listing payload.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// ProductResponse wraps a single product returned by admin mutations.
type ProductResponse struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

// ProductImagesResponse lists a product's images.
type ProductImagesResponse struct {
	Images []ProductImage `json:"images"`
}

// CategoriesResponse is the category listing payload.
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

// CategoryResponse wraps a single category returned by admin mutations.
type CategoryResponse struct {
	Message  string   `json:"message"`
	Category Category `json:"category"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name          string  `json:"name" validate:"required"`
	Slug          string  `json:"slug" validate:"required"`
	Description   string  `json:"description"`
	CategoryID    int     `json:"category_id" validate:"required,gt=0"`
	BasePrice     float64 `json:"base_price" validate:"gt=0"`
	StockQuantity *int    `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	IsActive      bool    `json:"is_active"`
	IsFeatured    bool    `json:"is_featured"`
}

// CategoryInput is the admin create/update payload.
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	ParentID    *int   `json:"parent_id"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
}
