package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/config"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/identity"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "STOREFRONT"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	if cfg.DB.AutoMigrate {
		logger.Info("applying migrations")
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	sessionManager, closeStore, err := newSessionManager(cfg.Session, db)
	if err != nil {
		return fmt.Errorf("building session manager: %w", err)
	}
	defer closeStore()

	tax, shipping, threshold, err := cfg.Pricing.Decimals()
	if err != nil {
		return fmt.Errorf("parsing pricing: %w", err)
	}

	limiter := rate.NewLimiter(
		cfg.Auth.LoginBurst,
		time.Duration(cfg.Auth.LoginExpiryMin)*time.Minute,
		rate.Every(cfg.Auth.LoginInterval),
	)
	defer limiter.Stop()

	mux, err := api.APIMux(api.APIConfig{
		CorsOrigin:    cfg.Cors.Origin,
		Log:           logger,
		DB:            db,
		Session:       sessionManager,
		Cookies:       identity.Names{Cart: cfg.Cookies.Cart, Wishlist: cfg.Cookies.Wishlist},
		SecureCookies: cfg.Session.Secure,
		SignInPath:    cfg.Auth.SignInPath,
		Pricing: cart.Pricing{
			TaxRate:               tax,
			ShippingPrice:         shipping,
			FreeShippingThreshold: threshold,
		},
		LatestLimit:  cfg.Catalog.LatestLimit,
		LoginLimiter: limiter,
	})
	if err != nil {
		return fmt.Errorf("building api: %w", err)
	}

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

// newSessionManager picks the session store. The returned func releases it.
func newSessionManager(cfg config.Session, db *sqlx.DB) (*scs.SessionManager, func(), error) {
	sm := scs.New()
	sm.Lifetime = cfg.Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.Secure
	sm.Cookie.SameSite = http.SameSiteLaxMode

	switch cfg.Store {
	case "postgres":
		store := postgresstore.New(db.DB)
		sm.Store = store
		return sm, store.StopCleanup, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sm.Store = goredisstore.New(client)
		return sm, func() { client.Close() }, nil

	case "memory":
		return sm, func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
}
