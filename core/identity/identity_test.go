package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func serve(t *testing.T, r *http.Request) (*httptest.ResponseRecorder, Identity) {
	t.Helper()

	var seen Identity
	h := Provision(DefaultNames(), false)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		seen = FromContext(ctx)
		if got := FromRequest(r, DefaultNames()); got != seen {
			t.Errorf("request cookies %+v differ from context identity %+v", got, seen)
		}
		return nil
	})

	w := httptest.NewRecorder()
	if err := h(context.Background(), w, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return w, seen
}

func setCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	m := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		m[c.Name] = c
	}
	return m
}

func TestProvisionIssuesBothCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w, id := serve(t, r)

	cookies := setCookies(w)
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}

	cart, wish := cookies[DefaultCartCookie], cookies[DefaultWishlistCookie]
	if cart == nil || wish == nil {
		t.Fatalf("missing identity cookie: %v", cookies)
	}
	if cart.Value == wish.Value {
		t.Fatalf("cart and wishlist identifiers must differ, both are %q", cart.Value)
	}
	for _, c := range []*http.Cookie{cart, wish} {
		if _, err := uuid.Parse(c.Value); err != nil {
			t.Errorf("cookie %s value %q is not a uuid", c.Name, c.Value)
		}
		if c.Path != "/" || !c.HttpOnly {
			t.Errorf("cookie %s: expected path / and HttpOnly, got %+v", c.Name, c)
		}
	}

	if id.CartID != cart.Value || id.WishlistID != wish.Value {
		t.Fatalf("context identity %+v does not match issued cookies", id)
	}

	// A follow-up request carrying the cookies changes nothing.
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cart)
	r2.AddCookie(wish)
	w2, id2 := serve(t, r2)

	if h := w2.Header().Values("Set-Cookie"); len(h) != 0 {
		t.Fatalf("expected no Set-Cookie on second request, got %v", h)
	}
	if id2 != id {
		t.Fatalf("identity changed between requests: %+v -> %+v", id, id2)
	}
}

func TestProvisionKeepsExistingCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCartCookie, Value: "existing-cart"})

	w, id := serve(t, r)

	cookies := setCookies(w)
	if len(cookies) != 1 {
		t.Fatalf("expected only the wishlist cookie, got %v", cookies)
	}
	if _, ok := cookies[DefaultWishlistCookie]; !ok {
		t.Fatal("wishlist cookie was not issued")
	}
	if id.CartID != "existing-cart" {
		t.Fatalf("cart identifier regenerated: %q", id.CartID)
	}
}

func TestProvisionReplacesEmptyCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCartCookie, Value: ""})
	r.AddCookie(&http.Cookie{Name: DefaultWishlistCookie, Value: "kept"})

	w, id := serve(t, r)

	cookies := setCookies(w)
	if len(cookies) != 1 || cookies[DefaultCartCookie] == nil {
		t.Fatalf("expected only a new cart cookie, got %v", cookies)
	}
	if id.CartID == "" || id.WishlistID != "kept" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestProvisionCustomNames(t *testing.T) {
	names := Names{Cart: "c", Wishlist: "w"}
	h := Provision(names, true)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	})

	w := httptest.NewRecorder()
	if err := h(context.Background(), w, httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatal(err)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name != "c" && c.Name != "w" {
			t.Errorf("unexpected cookie name %q", c.Name)
		}
		if !c.Secure {
			t.Errorf("cookie %s should be secure", c.Name)
		}
	}
}
