package wishlist

import (
	"context"

	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, w Wishlist) error {
	const q = `
	INSERT INTO wishlists
		(wishlist_id, user_id, session_wishlist_id, items, created_at, updated_at)
	VALUES
		(:wishlist_id, :user_id, :session_wishlist_id, :items, :created_at, :updated_at)`

	r, err := toRow(w)
	if err != nil {
		return err
	}

	if _, err := database.NamedExecContext(ctx, db, q, r); err != nil {
		return err
	}

	return nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) (Wishlist, error) {
	const q = `
	SELECT *
	FROM wishlists
	WHERE user_id = $1`

	var r row
	if err := database.GetContext(ctx, db, &r, q, userID); err != nil {
		return Wishlist{}, err
	}

	return r.toWishlist(), nil
}

func FetchBySession(ctx context.Context, db sqlx.ExtContext, sessionWishlistID string) (Wishlist, error) {
	const q = `
	SELECT *
	FROM wishlists
	WHERE session_wishlist_id = $1`

	var r row
	if err := database.GetContext(ctx, db, &r, q, sessionWishlistID); err != nil {
		return Wishlist{}, err
	}

	return r.toWishlist(), nil
}

// FetchByOwner prefers the user when the owner carries one.
func FetchByOwner(ctx context.Context, db sqlx.ExtContext, o Owner) (Wishlist, error) {
	if o.UserID != "" {
		return FetchByUser(ctx, db, o.UserID)
	}
	return FetchBySession(ctx, db, o.SessionID)
}

// UpdateItems rewrites the stored items, which also drops any entry that
// was skipped as corrupt when w was read.
func UpdateItems(ctx context.Context, db sqlx.ExtContext, w Wishlist) error {
	const q = `
	UPDATE wishlists SET
		items = :items,
		updated_at = :updated_at
	WHERE wishlist_id = :wishlist_id`

	r, err := toRow(w)
	if err != nil {
		return err
	}

	if _, err := database.NamedExecContext(ctx, db, q, r); err != nil {
		return err
	}

	return nil
}

func DeleteByUser(ctx context.Context, db sqlx.ExtContext, userID string) (int64, error) {
	const q = `
	DELETE FROM wishlists
	WHERE user_id = $1`

	return database.ExecContext(ctx, db, q, userID)
}

// Ledger exposes the wishlist table to the guest merge.
type Ledger struct{}

func (Ledger) FindBySession(ctx context.Context, tx sqlx.ExtContext, sessionWishlistID string) (string, error) {
	const q = `
	SELECT wishlist_id
	FROM wishlists
	WHERE session_wishlist_id = $1
	FOR UPDATE`

	var id string
	if err := database.GetContext(ctx, tx, &id, q, sessionWishlistID); err != nil {
		return "", err
	}

	return id, nil
}

func (Ledger) DeleteOwned(ctx context.Context, tx sqlx.ExtContext, userID string) (int64, error) {
	return DeleteByUser(ctx, tx, userID)
}

func (Ledger) Reassign(ctx context.Context, tx sqlx.ExtContext, wishlistID, sessionWishlistID, userID string) (int64, error) {
	const q = `
	UPDATE wishlists SET
		user_id = $1,
		session_wishlist_id = NULL,
		updated_at = NOW()
	WHERE wishlist_id = $2 AND session_wishlist_id = $3`

	return database.ExecContext(ctx, tx, q, userID, wishlistID, sessionWishlistID)
}
