package cart

import (
	"context"

	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, c Cart) error {
	const q = `
	INSERT INTO carts
		(cart_id, user_id, session_cart_id, items, items_price, shipping_price,
		 tax_price, total_price, created_at, updated_at)
	VALUES
		(:cart_id, :user_id, :session_cart_id, :items, :items_price, :shipping_price,
		 :tax_price, :total_price, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return err
	}

	return nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) (Cart, error) {
	const q = `
	SELECT *
	FROM carts
	WHERE user_id = $1`

	var c Cart
	if err := database.GetContext(ctx, db, &c, q, userID); err != nil {
		return Cart{}, err
	}

	return c, nil
}

func FetchBySession(ctx context.Context, db sqlx.ExtContext, sessionCartID string) (Cart, error) {
	const q = `
	SELECT *
	FROM carts
	WHERE session_cart_id = $1`

	var c Cart
	if err := database.GetContext(ctx, db, &c, q, sessionCartID); err != nil {
		return Cart{}, err
	}

	return c, nil
}

// FetchByOwner prefers the user when the owner carries one.
func FetchByOwner(ctx context.Context, db sqlx.ExtContext, o Owner) (Cart, error) {
	if o.UserID != "" {
		return FetchByUser(ctx, db, o.UserID)
	}
	return FetchBySession(ctx, db, o.SessionID)
}

func UpdateItems(ctx context.Context, db sqlx.ExtContext, c Cart) error {
	const q = `
	UPDATE carts SET
		items = :items,
		items_price = :items_price,
		shipping_price = :shipping_price,
		tax_price = :tax_price,
		total_price = :total_price,
		updated_at = :updated_at
	WHERE cart_id = :cart_id`

	if _, err := database.NamedExecContext(ctx, db, q, c); err != nil {
		return err
	}

	return nil
}

func DeleteByUser(ctx context.Context, db sqlx.ExtContext, userID string) (int64, error) {
	const q = `
	DELETE FROM carts
	WHERE user_id = $1`

	return database.ExecContext(ctx, db, q, userID)
}

// Ledger exposes the cart table to the guest merge.
type Ledger struct{}

func (Ledger) FindBySession(ctx context.Context, tx sqlx.ExtContext, sessionCartID string) (string, error) {
	const q = `
	SELECT cart_id
	FROM carts
	WHERE session_cart_id = $1
	FOR UPDATE`

	var id string
	if err := database.GetContext(ctx, tx, &id, q, sessionCartID); err != nil {
		return "", err
	}

	return id, nil
}

func (Ledger) DeleteOwned(ctx context.Context, tx sqlx.ExtContext, userID string) (int64, error) {
	return DeleteByUser(ctx, tx, userID)
}

func (Ledger) Reassign(ctx context.Context, tx sqlx.ExtContext, cartID, sessionCartID, userID string) (int64, error) {
	const q = `
	UPDATE carts SET
		user_id = $1,
		session_cart_id = NULL,
		updated_at = NOW()
	WHERE cart_id = $2 AND session_cart_id = $3`

	return database.ExecContext(ctx, tx, q, userID, cartID, sessionCartID)
}
