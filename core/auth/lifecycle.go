package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/identity"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/sirupsen/logrus"
)

type Trigger string

const (
	TriggerSignIn Trigger = "signIn"
	TriggerSignUp Trigger = "signUp"
)

const (
	keyUserID = "userID"
	keyRole   = "role"
	keyName   = "name"
)

// Lifecycle are the points where authentication state is created, read and
// enforced.
type Lifecycle interface {
	// OnTokenIssue runs after credentials were verified and before the
	// session token is handed out.
	OnTokenIssue(ctx context.Context, trigger Trigger, u user.User) (claims.Claims, error)

	// OnSessionRead returns the claims of the current session, if any.
	OnSessionRead(ctx context.Context) (claims.Claims, bool)

	// OnAuthorize decides whether the request may proceed.
	OnAuthorize(ctx context.Context, r *http.Request) bool
}

// Hooks is the Lifecycle backed by scs sessions.
type Hooks struct {
	log     logrus.FieldLogger
	session *scs.SessionManager
	merger  *identity.Merger
	policy  Policy
}

func NewHooks(log logrus.FieldLogger, session *scs.SessionManager, merger *identity.Merger, policy Policy) *Hooks {
	return &Hooks{
		log:     log,
		session: session,
		merger:  merger,
		policy:  policy,
	}
}

func (h *Hooks) OnTokenIssue(ctx context.Context, trigger Trigger, u user.User) (claims.Claims, error) {
	if trigger == TriggerSignIn || trigger == TriggerSignUp {
		u = h.merger.Run(ctx, u, identity.FromContext(ctx))
	}

	if err := h.session.RenewToken(ctx); err != nil {
		return claims.Claims{}, fmt.Errorf("renewing session token: %w", err)
	}

	clm := claims.Claims{
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
	}

	h.session.Put(ctx, keyUserID, clm.UserID)
	h.session.Put(ctx, keyRole, clm.Role)
	h.session.Put(ctx, keyName, clm.Name)

	h.log.WithFields(logrus.Fields{
		"user_id": u.ID,
		"trigger": trigger,
	}).Info("session issued")

	return clm, nil
}

func (h *Hooks) OnSessionRead(ctx context.Context) (claims.Claims, bool) {
	id := h.session.GetString(ctx, keyUserID)
	if id == "" {
		return claims.Claims{}, false
	}

	return claims.Claims{
		UserID: id,
		Name:   h.session.GetString(ctx, keyName),
		Role:   h.session.GetString(ctx, keyRole),
	}, true
}

func (h *Hooks) OnAuthorize(ctx context.Context, r *http.Request) bool {
	if _, ok := h.OnSessionRead(ctx); ok {
		return true
	}
	return !h.policy.Protected(r.URL.Path)
}
