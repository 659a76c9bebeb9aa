// Package identity tracks anonymous shoppers through two cookies and moves
// what they collected to their account once they authenticate.
package identity

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/irsalhamdi/storefront/api/web"
)

const (
	DefaultCartCookie     = "sessionCartId"
	DefaultWishlistCookie = "sessionWishlistId"
)

// Names are the cookie names carrying the anonymous identifiers.
type Names struct {
	Cart     string
	Wishlist string
}

func DefaultNames() Names {
	return Names{Cart: DefaultCartCookie, Wishlist: DefaultWishlistCookie}
}

// Identity is the pair of anonymous identifiers of one browser session.
// Either may be empty when the request did not carry it.
type Identity struct {
	CartID     string
	WishlistID string
}

type ctxKey int

const identityKey ctxKey = 1

func Set(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

func FromRequest(r *http.Request, names Names) Identity {
	return Identity{
		CartID:     cookieValue(r, names.Cart),
		WishlistID: cookieValue(r, names.Wishlist),
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Provision guarantees both identifiers exist. A missing or empty cookie gets
// a fresh UUID and a Set-Cookie on the response; a present one is left as is.
// The identity is stored in the context and the generated cookies are added
// to the request, so handlers of this very request already see them.
func Provision(names Names, secure bool) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := FromRequest(r, names)

			if id.CartID == "" {
				id.CartID = uuid.NewString()
				issue(w, r, names.Cart, id.CartID, secure)
			}

			if id.WishlistID == "" {
				id.WishlistID = uuid.NewString()
				issue(w, r, names.Wishlist, id.WishlistID, secure)
			}

			return handler(Set(ctx, id), w, r)
		}
		return h
	}
	return m
}

func issue(w http.ResponseWriter, r *http.Request, name, value string, secure bool) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, c)

	cs := r.Cookies()
	r.Header.Del("Cookie")
	for _, old := range cs {
		if old.Name != name {
			r.AddCookie(old)
		}
	}
	r.AddCookie(&http.Cookie{Name: name, Value: value})
}
