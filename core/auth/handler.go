package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var errInvalidCredentials = errors.New("invalid credentials")

// localPath accepts only same-origin absolute paths as callback targets.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// complete issues the session token and answers the action, following the
// callback when one was requested.
func complete(ctx context.Context, w http.ResponseWriter, lc Lifecycle, trigger Trigger, u user.User, callback, message string, status int) error {
	clm, err := lc.OnTokenIssue(ctx, trigger, u)
	if err != nil {
		return fmt.Errorf("issuing session for user[%s]: %w", u.ID, err)
	}

	if callback != "" && localPath(callback) {
		return weberr.Redirect(callback)
	}

	resp := web.Data{Result: web.OK(message), Data: clm}
	return web.Respond(ctx, w, resp, status)
}

func HandleSignIn(db *sqlx.DB, lc Lifecycle, limiter *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var cred Credentials
		if err := web.Decode(w, r, &cred); err != nil {
			return weberr.Fail(err, "Invalid sign in data", http.StatusBadRequest)
		}

		if err := validate.Check(cred); err != nil {
			return weberr.Validation(err)
		}

		if !limiter.Check(cred.Email) {
			err := fmt.Errorf("too many sign in attempts for %s", cred.Email)
			return weberr.Fail(err, "Too many attempts, try again later", http.StatusTooManyRequests)
		}

		invalid := func(err error) error {
			return weberr.Fail(err, "Invalid email or password", http.StatusUnauthorized)
		}

		u, err := user.FetchByEmail(ctx, db, cred.Email)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return invalid(errInvalidCredentials)
			}
			return weberr.Action(fmt.Errorf("fetching user by email: %w", err), "Unable to sign in")
		}

		if u.PasswordHash == nil {
			return invalid(fmt.Errorf("user[%s] has no password: %w", u.ID, errInvalidCredentials))
		}

		if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(cred.Password)); err != nil {
			return invalid(fmt.Errorf("user[%s]: %w", u.ID, errInvalidCredentials))
		}

		err = complete(ctx, w, lc, TriggerSignIn, u, cred.CallbackURL, "Signed in successfully!", http.StatusOK)
		return weberr.Action(err, "Unable to sign in")
	}
}

func HandleSignUp(db *sqlx.DB, lc Lifecycle) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var su SignUp
		if err := web.Decode(w, r, &su); err != nil {
			return weberr.Fail(err, "Invalid sign up data", http.StatusBadRequest)
		}

		if err := validate.Check(su); err != nil {
			return weberr.Validation(err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcryptCost)
		if err != nil {
			return weberr.Action(fmt.Errorf("hashing password: %w", err), "Unable to sign up")
		}

		name := su.Name
		if name == "" {
			name = user.NoName
		}

		now := time.Now().UTC()
		h := string(hash)
		u := user.User{
			ID:           validate.GenerateID(),
			Name:         name,
			Email:        su.Email,
			PasswordHash: &h,
			Role:         claims.RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, u); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.Fail(err, "User already exists", http.StatusConflict)
			}
			return weberr.Action(fmt.Errorf("creating user: %w", err), "Unable to sign up")
		}

		err = complete(ctx, w, lc, TriggerSignUp, u, su.CallbackURL, "Signed up successfully!", http.StatusCreated)
		return weberr.Action(err, "Unable to sign up")
	}
}

func HandleSignOut(sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := sm.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, web.OK("Signed out successfully!"), http.StatusOK)
	}
}

func HandleSession(lc Lifecycle) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, ok := lc.OnSessionRead(ctx)
		if !ok {
			return weberr.NotAuthorized(errors.New("no active session"))
		}

		return web.Respond(ctx, w, clm, http.StatusOK)
	}
}
