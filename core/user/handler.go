package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/jmoiron/sqlx"
)

func current(ctx context.Context, db sqlx.ExtContext) (User, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return User{}, weberr.NotAuthorized(errors.New("user not authenticated"))
	}

	u, err := Fetch(ctx, db, clm.UserID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return User{}, weberr.Missing(fmt.Errorf("user[%s] not found", clm.UserID), "User not found")
		}
		return User{}, fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
	}

	return u, nil
}

func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := current(ctx, db)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("passed id is not valid: %w", err))
		}

		if !claims.CanAccess(ctx, id) {
			return weberr.NotAuthorized(fmt.Errorf("not allowed to read user[%s]", id))
		}

		u, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("user[%s] not found", id))
			}
			return fmt.Errorf("fetching user[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		us, err := FetchAll(ctx, db)
		if err != nil {
			return fmt.Errorf("fetching users: %w", err)
		}

		return web.Respond(ctx, w, us, http.StatusOK)
	}
}

// mutate loads the signed-in user, applies fn and persists the result.
func mutate(ctx context.Context, db *sqlx.DB, fn func(*User)) error {
	u, err := current(ctx, db)
	if err != nil {
		return err
	}

	fn(&u)
	u.UpdatedAt = time.Now().UTC()

	if err := Update(ctx, db, u); err != nil {
		return fmt.Errorf("updating user[%s]: %w", u.ID, err)
	}
	return nil
}

func HandleUpdateProfile(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var up ProfileUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.Fail(err, "Invalid profile data", http.StatusBadRequest)
		}

		if err := validate.Check(up); err != nil {
			return weberr.Validation(err)
		}

		err := mutate(ctx, db, func(u *User) { u.Name = up.Name })
		if err != nil {
			return weberr.Action(err, "Unable to update profile")
		}

		return web.Respond(ctx, w, web.OK("User updated successfully"), http.StatusOK)
	}
}

func HandleUpdateAddress(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var addr Address
		if err := web.Decode(w, r, &addr); err != nil {
			return weberr.Fail(err, "Invalid address data", http.StatusBadRequest)
		}

		if err := validate.Check(addr); err != nil {
			return weberr.Validation(err)
		}

		err := mutate(ctx, db, func(u *User) { u.Address = &addr })
		if err != nil {
			return weberr.Action(err, "Unable to update address")
		}

		return web.Respond(ctx, w, web.OK("User address updated successfully"), http.StatusOK)
	}
}

func HandleUpdatePaymentMethod(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pm PaymentMethodUp
		if err := web.Decode(w, r, &pm); err != nil {
			return weberr.Fail(err, "Invalid payment method", http.StatusBadRequest)
		}

		if err := validate.Check(pm); err != nil {
			return weberr.Validation(err)
		}

		err := mutate(ctx, db, func(u *User) { u.PaymentMethod = &pm.Type })
		if err != nil {
			return weberr.Action(err, "Unable to update payment method")
		}

		return web.Respond(ctx, w, web.OK("User payment method updated successfully"), http.StatusOK)
	}
}
