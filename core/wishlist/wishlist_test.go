package wishlist

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestDecodeItemsDropsCorruptEntries(t *testing.T) {
	raw := []byte(`[
		"not json at all",
		{"productId":"p-1","name":"Shirt","slug":"shirt","price":"59.99","image":"/a.jpg"}
	]`)

	items, corrupt := DecodeItems(raw)

	exp := []Item{{ProductID: "p-1", Name: "Shirt", Slug: "shirt", Price: decimal.RequireFromString("59.99"), Image: "/a.jpg"}}
	if diff := cmp.Diff(exp, items, decimalCmp); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	if len(corrupt) != 1 {
		t.Fatalf("expected 1 corrupt entry, got %d", len(corrupt))
	}
	var cde *CorruptDataError
	if !errors.As(corrupt[0], &cde) || cde.Index != 0 {
		t.Fatalf("expected CorruptDataError at index 0, got %v", corrupt[0])
	}
}

func TestDecodeItemsShapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		ids     []string
		corrupt int
	}{
		{name: "empty column", raw: ``, ids: nil},
		{name: "empty array", raw: `[]`, ids: nil},
		{name: "objects", raw: `[{"productId":"a"},{"productId":"b","price":12.5}]`, ids: []string{"a", "b"}},
		{name: "double serialized", raw: `["{\"productId\":\"a\",\"name\":\"Shirt\"}"]`, ids: []string{"a"}},
		{name: "object placeholder", raw: `["[object Object]",{"productId":"b"}]`, ids: []string{"b"}, corrupt: 1},
		{name: "nulls are skipped silently", raw: `[null,{"productId":"a"}]`, ids: []string{"a"}},
		{name: "missing product", raw: `[{"name":"orphan"},{"productId":"a"}]`, ids: []string{"a"}, corrupt: 1},
		{name: "wrong types", raw: `[42,true,{"productId":"a","price":"abc"}]`, ids: nil, corrupt: 3},
		{name: "not an array", raw: `{"productId":"a"}`, ids: nil, corrupt: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, corrupt := DecodeItems([]byte(tt.raw))

			var ids []string
			for _, it := range items {
				ids = append(ids, it.ProductID)
			}
			if diff := cmp.Diff(tt.ids, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
			if len(corrupt) != tt.corrupt {
				t.Errorf("expected %d corrupt entries, got %d: %v", tt.corrupt, len(corrupt), corrupt)
			}
			if items == nil {
				t.Error("items must never be nil")
			}
		})
	}
}

func TestRowRoundTripNormalizesItems(t *testing.T) {
	r := row{ID: "w", Items: []byte(`["{\"productId\":\"a\"}","[object Object]"]`)}

	w := r.toWishlist()
	if len(w.Corrupt) != 1 {
		t.Fatalf("expected 1 corrupt entry, got %d", len(w.Corrupt))
	}

	out, err := toRow(w)
	if err != nil {
		t.Fatal(err)
	}

	items, corrupt := DecodeItems(out.Items)
	if len(corrupt) != 0 || len(items) != 1 || items[0].ProductID != "a" {
		t.Fatalf("rewritten items not clean: %s", out.Items)
	}
}

func TestContainsAndRemove(t *testing.T) {
	w := Wishlist{Items: []Item{{ProductID: "a"}, {ProductID: "b"}}}

	if !w.Contains("a") || w.Contains("z") {
		t.Fatal("Contains returned the wrong answer")
	}

	if w.Remove("z") {
		t.Fatal("removing an absent product must report false")
	}
	if !w.Remove("a") {
		t.Fatal("removing a present product must report true")
	}
	if diff := cmp.Diff([]Item{{ProductID: "b"}}, w.Items, decimalCmp); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}
