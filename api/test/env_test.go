package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/config"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/identity"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TestEnv struct {
	*httptest.Server
	DB  *sqlx.DB
	Log *logrus.Logger
}

// NewTestEnv starts a throwaway Postgres, migrates it and serves the API in
// front of it. Tests are skipped when docker is not reachable.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	pool.MaxWait = 2 * time.Minute

	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       fmt.Sprintf("storefront-%s-%d", name, time.Now().UnixNano()),
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=storefront",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres: %w", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(res); err != nil {
			t.Logf("purging postgres: %v", err)
		}
	})

	cfg := config.DB{
		User:         "postgres",
		Password:     "postgres",
		Host:         res.GetHostPort("5432/tcp"),
		Name:         "storefront",
		MaxIdleConns: 2,
		DisableTLS:   true,
	}

	var db *sqlx.DB
	err = pool.Retry(func() error {
		var err error
		if db, err = database.Open(cfg); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return database.StatusCheck(ctx, db)
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := postgresstore.NewWithCleanupInterval(db.DB, time.Minute)
	t.Cleanup(store.StopCleanup)

	sm := scs.New()
	sm.Store = store

	limiter := rate.NewLimiter(100, time.Minute, rate.Every(time.Millisecond))
	t.Cleanup(limiter.Stop)

	mux, err := api.APIMux(api.APIConfig{
		Log:          log,
		DB:           db,
		Session:      sm,
		Cookies:      identity.DefaultNames(),
		SignInPath:   "/sign-in",
		Pricing:      cart.DefaultPricing(),
		LatestLimit:  4,
		LoginLimiter: limiter,
	})
	if err != nil {
		return nil, fmt.Errorf("building api: %w", err)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &TestEnv{Server: srv, DB: db, Log: log}, nil
}

// Browser is a client with its own cookie jar that never follows redirects.
type Browser struct {
	*http.Client
	base *url.URL
}

func (env *TestEnv) NewBrowser(t *testing.T) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	base, err := url.Parse(env.URL)
	if err != nil {
		t.Fatal(err)
	}

	return &Browser{
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base: base,
	}
}

// Cookie returns the value the browser holds for name.
func (b *Browser) Cookie(name string) string {
	for _, c := range b.Jar.Cookies(b.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Do sends body as JSON and returns the response with its body read.
func (b *Browser) Do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}

	r, err := http.NewRequest(method, b.base.String()+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := b.Client.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	raw, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	return w, raw
}

// Expect is Do plus a status check, decoding the body into out when set.
func (b *Browser) Expect(t *testing.T, status int, method, path string, body, out any) *http.Response {
	t.Helper()

	w, raw := b.Do(t, method, path, body)
	if w.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, w.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decoding %s: %v", method, path, raw, err)
		}
	}
	return w
}

func (b *Browser) SignUp(t *testing.T, name, email, password string) {
	t.Helper()
	in := map[string]string{"email": email, "password": password, "confirmPassword": password}
	if name != "" {
		in["name"] = name
	}
	b.Expect(t, http.StatusCreated, http.MethodPost, "/auth/sign-up", in, nil)
}

func (b *Browser) SignIn(t *testing.T, email, password string) {
	t.Helper()
	in := map[string]string{"email": email, "password": password}
	b.Expect(t, http.StatusOK, http.MethodPost, "/auth/sign-in", in, nil)
}

func (b *Browser) SignOut(t *testing.T) {
	t.Helper()
	b.Expect(t, http.StatusOK, http.MethodPost, "/auth/sign-out", nil, nil)
}

func (env *TestEnv) CreateProduct(t *testing.T, name, price string) product.Product {
	t.Helper()

	now := time.Now().UTC()
	p := product.Product{
		ID:          validate.GenerateID(),
		Name:        name,
		Slug:        fmt.Sprintf("%s-%d", name, now.UnixNano()),
		Category:    "Shirts",
		Brand:       "Storefront",
		Description: "A test product",
		Images:      []string{"/images/" + name + ".jpg"},
		Stock:       10,
		Price:       decimal.RequireFromString(price),
		Rating:      decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := product.Create(context.Background(), env.DB, p); err != nil {
		t.Fatalf("creating product %s: %v", name, err)
	}
	return p
}

func (env *TestEnv) count(t *testing.T, q string, args ...any) int {
	t.Helper()

	var n int
	if err := env.DB.GetContext(context.Background(), &n, q, args...); err != nil {
		t.Fatalf("counting %q: %v", q, err)
	}
	return n
}
