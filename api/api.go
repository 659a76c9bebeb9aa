package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/storefront/api/middleware"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/auth"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/identity"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/core/wishlist"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin    string
	Log           logrus.FieldLogger
	DB            *sqlx.DB
	Session       *scs.SessionManager
	Cookies       identity.Names
	SecureCookies bool
	SignInPath    string
	Pricing       cart.Pricing
	LatestLimit   int
	LoginLimiter  *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) (http.Handler, error) {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	policy, err := auth.NewPolicy(cfg.SignInPath, auth.DefaultProtected...)
	if err != nil {
		return nil, fmt.Errorf("building access policy: %w", err)
	}

	merger := identity.NewMerger(cfg.Log, cfg.DB,
		identity.CartResource(cart.Ledger{}),
		identity.WishlistResource(wishlist.Ledger{}),
	)
	hooks := auth.NewHooks(cfg.Log, cfg.Session, merger, policy)

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	// Cookies are provisioned before the access decision so that redirects
	// carry them too.
	a.mw = append(a.mw, identity.Provision(cfg.Cookies, cfg.SecureCookies))
	a.mw = append(a.mw, auth.Authorize(hooks, policy))

	authen := auth.Authenticate()
	admin := auth.Admin()

	a.Handle(http.MethodPost, "/auth/sign-up", auth.HandleSignUp(cfg.DB, hooks))
	a.Handle(http.MethodPost, "/auth/sign-in", auth.HandleSignIn(cfg.DB, hooks, cfg.LoginLimiter))
	a.Handle(http.MethodPost, "/auth/sign-out", auth.HandleSignOut(cfg.Session))
	a.Handle(http.MethodGet, "/auth/session", auth.HandleSession(hooks))

	a.Handle(http.MethodGet, "/products/latest", product.HandleListLatest(cfg.DB, cfg.LatestLimit))
	a.Handle(http.MethodGet, "/products/{slug}", product.HandleShowBySlug(cfg.DB))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB))
	a.Handle(http.MethodPost, "/cart/items", cart.HandleAddItem(cfg.DB, cfg.Pricing))
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleRemoveItem(cfg.DB, cfg.Pricing))

	a.Handle(http.MethodGet, "/wishlist", wishlist.HandleShow(cfg.DB, cfg.Log))
	a.Handle(http.MethodPost, "/wishlist/items", wishlist.HandleAddItem(cfg.DB, cfg.Log))
	a.Handle(http.MethodDelete, "/wishlist/items/{product_id}", wishlist.HandleRemoveItem(cfg.DB, cfg.Log))

	a.Handle(http.MethodGet, "/profile", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPut, "/profile", user.HandleUpdateProfile(cfg.DB), authen)
	a.Handle(http.MethodPut, "/shipping-address", user.HandleUpdateAddress(cfg.DB), authen)
	a.Handle(http.MethodPut, "/payment-method", user.HandleUpdatePaymentMethod(cfg.DB), authen)
	a.Handle(http.MethodGet, "/user/{id}", user.HandleShow(cfg.DB), authen)

	a.Handle(http.MethodGet, "/admin/users", user.HandleList(cfg.DB), authen, admin)
	a.Handle(http.MethodPost, "/admin/products", product.HandleCreate(cfg.DB), authen, admin)

	notFound := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return weberr.NotFound(fmt.Errorf("no route for %s %s", r.Method, r.URL.Path))
	}
	a.Router.NotFoundHandler = a.wrap(notFound)

	methodNotAllowed := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		err := fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path)
		return weberr.Fail(err, "Method not allowed", http.StatusMethodNotAllowed)
	}
	a.Router.MethodNotAllowedHandler = a.wrap(methodNotAllowed)

	return a.Router, nil
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {
	a.Router.Handle(path, a.wrap(handler, mw...)).Methods(method)
}

func (a *api) wrap(handler web.Handler, mw ...web.Middleware) http.Handler {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})
}
