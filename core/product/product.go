package product

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Slug        string          `json:"slug" db:"slug"`
	Category    string          `json:"category" db:"category"`
	Brand       string          `json:"brand" db:"brand"`
	Description string          `json:"description" db:"description"`
	Images      pq.StringArray  `json:"images" db:"images"`
	Stock       int             `json:"stock" db:"stock"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Rating      decimal.Decimal `json:"rating" db:"rating"`
	NumReviews  int             `json:"numReviews" db:"num_reviews"`
	IsFeatured  bool            `json:"isFeatured" db:"is_featured"`
	Banner      *string         `json:"banner" db:"banner"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Image is the first image of the product, or empty.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type ProductNew struct {
	Name        string          `json:"name" validate:"required,min=3"`
	Slug        string          `json:"slug" validate:"required,min=3"`
	Category    string          `json:"category" validate:"required,min=3"`
	Brand       string          `json:"brand" validate:"required,min=3"`
	Description string          `json:"description" validate:"required,min=3"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Images      []string        `json:"images" validate:"required,min=1,dive,required"`
	IsFeatured  bool            `json:"isFeatured"`
	Banner      *string         `json:"banner"`
	Price       decimal.Decimal `json:"price" validate:"money"`
}
