package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/identity"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/sirupsen/logrus/hooks/test"
)

func defaultPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := NewPolicy("/sign-in", DefaultProtected...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPolicyProtected(t *testing.T) {
	p := defaultPolicy(t)

	tests := []struct {
		path      string
		protected bool
	}{
		{"/shipping-address", true},
		{"/payment-method", true},
		{"/place-order", true},
		{"/profile", true},
		{"/user/42", true},
		{"/order/abc", true},
		{"/admin", true},
		{"/admin/products", true},
		{"/", false},
		{"/cart", false},
		{"/wishlist/items", false},
		{"/products/latest", false},
		{"/sign-in", false},
		{"/auth/session", false},
	}

	for _, tt := range tests {
		if got := p.Protected(tt.path); got != tt.protected {
			t.Errorf("Protected(%q) = %v, want %v", tt.path, got, tt.protected)
		}
	}
}

func TestNewPolicyRejectsBadPattern(t *testing.T) {
	if _, err := NewPolicy("/sign-in", `/user/(`); err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}

func TestSignInURLKeepsDestination(t *testing.T) {
	p := defaultPolicy(t)
	r := httptest.NewRequest(http.MethodGet, "/order/7?tab=items", nil)

	exp := "/sign-in?callbackUrl=%2Forder%2F7%3Ftab%3Ditems"
	if got := p.SignInURL(r); got != exp {
		t.Fatalf("expected %q, got %q", exp, got)
	}
}

// staticLifecycle answers OnSessionRead with fixed claims and defers the
// access decision to the policy like Hooks does.
type staticLifecycle struct {
	clm    claims.Claims
	signed bool
	policy Policy
}

func (s staticLifecycle) OnTokenIssue(ctx context.Context, trigger Trigger, u user.User) (claims.Claims, error) {
	return claims.Claims{UserID: u.ID}, nil
}

func (s staticLifecycle) OnSessionRead(ctx context.Context) (claims.Claims, bool) {
	return s.clm, s.signed
}

func (s staticLifecycle) OnAuthorize(ctx context.Context, r *http.Request) bool {
	return s.signed || !s.policy.Protected(r.URL.Path)
}

func TestAuthorize(t *testing.T) {
	p := defaultPolicy(t)

	tests := []struct {
		name     string
		signed   bool
		path     string
		redirect string
	}{
		{name: "anonymous protected", path: "/profile", redirect: "/sign-in?callbackUrl=%2Fprofile"},
		{name: "anonymous nested protected", path: "/user/1", redirect: "/sign-in?callbackUrl=%2Fuser%2F1"},
		{name: "anonymous public", path: "/cart"},
		{name: "signed in protected", signed: true, path: "/profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := staticLifecycle{clm: claims.Claims{UserID: "u1"}, signed: tt.signed, policy: p}

			var called bool
			var seen claims.Claims
			h := Authorize(lc, p)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				called = true
				seen, _ = claims.Get(ctx)
				return nil
			})

			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			err := h(r.Context(), httptest.NewRecorder(), r)

			if tt.redirect == "" {
				if err != nil || !called {
					t.Fatalf("expected pass-through, got err=%v called=%v", err, called)
				}
				if tt.signed && seen.UserID != "u1" {
					t.Fatalf("claims not in context: %+v", seen)
				}
				return
			}

			rd, ok := weberr.AsRedirect(err)
			if !ok || called {
				t.Fatalf("expected redirect without calling the handler, got err=%v called=%v", err, called)
			}
			if rd.URL != tt.redirect || rd.Status != http.StatusSeeOther {
				t.Fatalf("unexpected redirect %+v", rd)
			}
		})
	}
}

func TestAdminRequiresRole(t *testing.T) {
	h := Admin()(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error { return nil })
	r := httptest.NewRequest(http.MethodGet, "/admin/users", nil)

	ctx := claims.Set(r.Context(), claims.Claims{UserID: "u1", Role: claims.RoleUser})
	if err := h(ctx, httptest.NewRecorder(), r); err == nil {
		t.Fatal("a regular user must not pass")
	}

	ctx = claims.Set(r.Context(), claims.Claims{UserID: "u1", Role: claims.RoleAdmin})
	if err := h(ctx, httptest.NewRecorder(), r); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
}

func TestHooksIssueAndReadSession(t *testing.T) {
	log, _ := test.NewNullLogger()
	sm := scs.New()
	p := defaultPolicy(t)

	hooks := NewHooks(log, sm, identity.NewMerger(log, nil), p)

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := hooks.OnSessionRead(ctx); ok {
		t.Fatal("fresh session must be anonymous")
	}

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if hooks.OnAuthorize(ctx, r) {
		t.Fatal("anonymous access to /profile must be denied")
	}

	u := user.User{ID: "u1", Name: "Jane", Role: claims.RoleUser}
	clm, err := hooks.OnTokenIssue(ctx, TriggerSignIn, u)
	if err != nil {
		t.Fatal(err)
	}

	exp := claims.Claims{UserID: "u1", Name: "Jane", Role: claims.RoleUser}
	if diff := cmp.Diff(exp, clm); diff != "" {
		t.Fatalf("claims mismatch (-want +got):\n%s", diff)
	}

	got, ok := hooks.OnSessionRead(ctx)
	if !ok {
		t.Fatal("session must be authenticated after issue")
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("session claims mismatch (-want +got):\n%s", diff)
	}

	if !hooks.OnAuthorize(ctx, r) {
		t.Fatal("signed in access to /profile must be allowed")
	}
}

func TestLocalPath(t *testing.T) {
	tests := map[string]bool{
		"/":                    true,
		"/profile":             true,
		"/order/1?x=2":         true,
		"":                     false,
		"profile":              false,
		"//evil.example":       false,
		"/\\evil.example":      false,
		"https://evil.example": false,
	}

	for in, exp := range tests {
		if got := localPath(in); got != exp {
			t.Errorf("localPath(%q) = %v, want %v", in, got, exp)
		}
	}
}
