package product

import (
	"context"

	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, p Product) error {
	const q = `
	INSERT INTO products
		(product_id, name, slug, category, brand, description, images, stock,
		 price, rating, num_reviews, is_featured, banner, created_at, updated_at)
	VALUES
		(:product_id, :name, :slug, :category, :brand, :description, :images, :stock,
		 :price, :rating, :num_reviews, :is_featured, :banner, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, db, q, p); err != nil {
		return err
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `
	SELECT *
	FROM products
	WHERE product_id = $1`

	var p Product
	if err := database.GetContext(ctx, db, &p, q, id); err != nil {
		return Product{}, err
	}

	return p, nil
}

func FetchBySlug(ctx context.Context, db sqlx.ExtContext, slug string) (Product, error) {
	const q = `
	SELECT *
	FROM products
	WHERE slug = $1`

	var p Product
	if err := database.GetContext(ctx, db, &p, q, slug); err != nil {
		return Product{}, err
	}

	return p, nil
}

func FetchLatest(ctx context.Context, db sqlx.ExtContext, limit int) ([]Product, error) {
	const q = `
	SELECT *
	FROM products
	ORDER BY created_at DESC
	LIMIT $1`

	ps := []Product{}
	if err := database.SelectContext(ctx, db, &ps, q, limit); err != nil {
		return nil, err
	}

	return ps, nil
}
