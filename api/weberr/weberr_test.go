package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/storefront/api/web"
)

func TestActionPassesRedirectsThrough(t *testing.T) {
	rd := Redirect("/sign-in?callbackUrl=%2Fprofile")
	err := Action(fmt.Errorf("authorizing: %w", rd), "Unable to do it")

	got, ok := AsRedirect(err)
	if !ok {
		t.Fatalf("expected a redirect, got %v", err)
	}
	if got.Status != http.StatusSeeOther || got.URL != "/sign-in?callbackUrl=%2Fprofile" {
		t.Fatalf("unexpected redirect %+v", got)
	}
	if _, _, ok := Response(err); ok {
		t.Fatal("a redirect must not carry a result body")
	}
}

func TestActionKeepsExistingResult(t *testing.T) {
	err := Action(Missing(errors.New("gone"), "Cart not found"), "Unable to add item")

	body, status, ok := Response(err)
	if !ok || status != http.StatusNotFound {
		t.Fatalf("expected 404 result, got %v %d", ok, status)
	}
	if diff := cmp.Diff(web.Result{Success: false, Message: "Cart not found"}, body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestActionWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := Action(cause, "Unable to add item")

	body, status, ok := Response(err)
	if !ok || status != http.StatusInternalServerError {
		t.Fatalf("expected 500 result, got %v %d", ok, status)
	}
	if diff := cmp.Diff(web.Result{Success: false, Message: "Unable to add item"}, body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must stay reachable")
	}

	if Action(nil, "unused") != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestValidationShowsMessage(t *testing.T) {
	_, status, _ := Response(Validation(errors.New("email is a required field")))
	body, _, _ := Response(Validation(errors.New("email is a required field")))

	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if diff := cmp.Diff(web.Result{Message: "email is a required field"}, body); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsMergesLayers(t *testing.T) {
	err := Wrap(errors.New("boom"),
		WithFields(map[string]any{"user_id": "u1", "resource": "inner"}),
		WithFields(map[string]any{"resource": "outer", "req": 7}),
	)

	got, ok := Fields(err)
	if !ok {
		t.Fatal("expected fields")
	}
	exp := map[string]any{"user_id": "u1", "resource": "inner", "req": 7}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if _, ok := Fields(errors.New("plain")); ok {
		t.Fatal("plain errors carry no fields")
	}
}
