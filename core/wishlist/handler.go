package wishlist

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
	"github.com/sirupsen/logrus"
)

func ownerOf(ctx context.Context) (Owner, error) {
	if clm, err := claims.Get(ctx); err == nil {
		return Owner{UserID: clm.UserID}, nil
	}

	sid := identity.FromContext(ctx).WishlistID
	if sid == "" {
		err := errors.New("wishlist session cookie missing")
		return Owner{}, weberr.Fail(err, "Wishlist session not found", http.StatusBadRequest)
	}

	return Owner{SessionID: sid}, nil
}

// fetch loads the caller's wishlist and reports entries dropped as corrupt.
func fetch(ctx context.Context, db sqlx.ExtContext, log logrus.FieldLogger, o Owner) (Wishlist, error) {
	w, err := FetchByOwner(ctx, db, o)
	if err != nil {
		return Wishlist{}, err
	}

	for _, c := range w.Corrupt {
		log.WithFields(logrus.Fields{
			"wishlist_id": w.ID,
			"message":     c,
		}).Warn("dropping corrupt wishlist entry")
	}

	return w, nil
}

func HandleShow(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		o, err := ownerOf(ctx)
		if err != nil {
			return err
		}

		wl, err := fetch(ctx, db, log, o)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(err, "Wishlist not found")
			}
			return fmt.Errorf("fetching wishlist: %w", err)
		}

		return web.Respond(ctx, w, wl, http.StatusOK)
	}
}

func HandleAddItem(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		o, err := ownerOf(ctx)
		if err != nil {
			return err
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.Fail(err, "Invalid wishlist item", http.StatusBadRequest)
		}

		if err := validate.Check(in); err != nil {
			return weberr.Validation(err)
		}

		p, err := product.Fetch(ctx, db, in.ProductID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(fmt.Errorf("product[%s] not found", in.ProductID), "Product not found")
			}
			return weberr.Action(fmt.Errorf("fetching product[%s]: %w", in.ProductID, err), "Unable to add item to wishlist")
		}

		it := Item{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Price:     p.Price,
			Image:     p.Image(),
		}

		now := time.Now().UTC()
		wl, err := fetch(ctx, db, log, o)
		switch {
		case errors.Is(err, database.ErrDBNotFound):
			wl = Wishlist{
				ID:        validate.GenerateID(),
				Items:     []Item{it},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if o.UserID != "" {
				wl.UserID = &o.UserID
			} else {
				wl.SessionWishlistID = &o.SessionID
			}

			if err := Create(ctx, db, wl); err != nil {
				return weberr.Action(fmt.Errorf("creating wishlist: %w", err), "Unable to add item to wishlist")
			}

		case err != nil:
			return weberr.Action(fmt.Errorf("fetching wishlist: %w", err), "Unable to add item to wishlist")

		default:
			if wl.Contains(it.ProductID) {
				err := fmt.Errorf("product[%s] already in wishlist[%s]", it.ProductID, wl.ID)
				return weberr.Fail(err, "Item already in wishlist", http.StatusConflict)
			}

			wl.Items = append(wl.Items, it)
			wl.UpdatedAt = now

			if err := UpdateItems(ctx, db, wl); err != nil {
				return weberr.Action(fmt.Errorf("updating wishlist[%s]: %w", wl.ID, err), "Unable to add item to wishlist")
			}
		}

		resp := web.Data{
			Result: web.OK(fmt.Sprintf("%s added to wishlist successfully", p.Name)),
			Data:   wl,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func HandleRemoveItem(db *sqlx.DB, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		o, err := ownerOf(ctx)
		if err != nil {
			return err
		}

		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.Validation(err)
		}

		wl, err := fetch(ctx, db, log, o)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.Missing(err, "Wishlist not found")
			}
			return weberr.Action(fmt.Errorf("fetching wishlist: %w", err), "Unable to remove item from wishlist")
		}

		i := wl.index(productID)
		if i < 0 {
			return weberr.Missing(fmt.Errorf("product[%s] not in wishlist[%s]", productID, wl.ID), "Item not found")
		}
		name := wl.Items[i].Name

		wl.Remove(productID)
		wl.UpdatedAt = time.Now().UTC()

		if err := UpdateItems(ctx, db, wl); err != nil {
			return weberr.Action(fmt.Errorf("updating wishlist[%s]: %w", wl.ID, err), "Unable to remove item from wishlist")
		}

		resp := web.Data{
			Result: web.OK(fmt.Sprintf("%s removed from wishlist successfully", name)),
			Data:   wl,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}
