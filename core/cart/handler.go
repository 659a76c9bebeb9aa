package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/identity"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/jmoiron/sqlx"
)

func ownerOf(ctx context.Context) (Owner, error) {
	if clm, err := claims.Get(ctx); err == nil {
		return Owner{UserID: clm.UserID}, nil
	}

	sid := identity.FromContext(ctx).CartID
	if sid == "" {
		err := errors.New("cart session cookie missing")
		return Owner{}, weberr.Fail(err, "Cart session not found", http.StatusBadRequest)
	}

	return Owner{SessionID: sid}, nil
}

func newCart(o Owner, now time.Time) Cart {
	c := Cart{
		ID:        validate.GenerateID(),
		Items:     Items{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if o.UserID != "" {
		c.UserID = &o.UserID
	} else {
		c.SessionCartID = &o.SessionID
	}
	return c
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		o, err := ownerOf(ctx)
		if err != nil {
			return err
		}

		c, err := FetchByOwner(ctx, db, o)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(err, "Cart not found")
			}
			return fmt.Errorf("fetching cart: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleAddItem(db *sqlx.DB, pricing Pricing) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		o, err := ownerOf(ctx)
		if err != nil {
			return err
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.Fail(err, "Invalid cart item", http.StatusBadRequest)
		}

		if err := validate.Check(in); err != nil {
			return weberr.Validation(err)
		}
		if in.Qty == 0 {
			in.Qty = 1
		}

		p, err := product.Fetch(ctx, db, in.ProductID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(fmt.Errorf("product[%s] not found", in.ProductID), "Product not found")
			}
			return weberr.Action(fmt.Errorf("fetching product[%s]: %w", in.ProductID, err), "Unable to add item to cart")
		}

		it := Item{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Qty:       in.Qty,
			Image:     p.Image(),
			Price:     p.Price,
		}

		now := time.Now().UTC()
		c, err := FetchByOwner(ctx, db, o)
		switch {
		case errors.Is(err, database.ErrDBNotFound):
			c = newCart(o, now)
			c.Add(it)
			pricing.Apply(&c)

			if err := Create(ctx, db, c); err != nil {
				return weberr.Action(fmt.Errorf("creating cart: %w", err), "Unable to add item to cart")
			}

		case err != nil:
			return weberr.Action(fmt.Errorf("fetching cart: %w", err), "Unable to add item to cart")

		default:
			c.Add(it)
			pricing.Apply(&c)
			c.UpdatedAt = now

			if err := UpdateItems(ctx, db, c); err != nil {
				return weberr.Action(fmt.Errorf("updating cart[%s]: %w", c.ID, err), "Unable to add item to cart")
			}
		}

		resp := web.Data{
			Result: web.OK(fmt.Sprintf("%s added to cart", p.Name)),
			Data:   c,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleRemoveItem(db *sqlx.DB, pricing Pricing) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		o, err := ownerOf(ctx)
		if err != nil {
			return err
		}

		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.Validation(err)
		}

		p, err := product.Fetch(ctx, db, productID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(fmt.Errorf("product[%s] not found", productID), "Product not found")
			}
			return weberr.Action(fmt.Errorf("fetching product[%s]: %w", productID, err), "Unable to remove item from cart")
		}

		c, err := FetchByOwner(ctx, db, o)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(err, "Cart not found")
			}
			return weberr.Action(fmt.Errorf("fetching cart: %w", err), "Unable to remove item from cart")
		}

		if !c.Remove(productID) {
			return weberr.Missing(fmt.Errorf("product[%s] not in cart[%s]", productID, c.ID), "Item not found")
		}

		pricing.Apply(&c)
		c.UpdatedAt = time.Now().UTC()

		if err := UpdateItems(ctx, db, c); err != nil {
			return weberr.Action(fmt.Errorf("updating cart[%s]: %w", c.ID, err), "Unable to remove item from cart")
		}

		resp := web.Data{
			Result: web.OK(fmt.Sprintf("%s removed from cart", p.Name)),
			Data:   c,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}
