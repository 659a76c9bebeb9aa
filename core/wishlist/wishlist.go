package wishlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Wishlist belongs either to a signed-in user or to an anonymous session.
type Wishlist struct {
	ID                string    `json:"id"`
	UserID            *string   `json:"userId,omitempty"`
	SessionWishlistID *string   `json:"sessionWishlistId,omitempty"`
	Items             []Item    `json:"items"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	// Corrupt lists the stored entries that were dropped while reading.
	Corrupt []error `json:"-"`
}

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// Owner selects whose wishlist a request works on.
type Owner struct {
	UserID    string
	SessionID string
}

func (w Wishlist) index(productID string) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (w Wishlist) Contains(productID string) bool {
	return w.index(productID) >= 0
}

// Remove drops productID and reports whether it was present.
func (w *Wishlist) Remove(productID string) bool {
	i := w.index(productID)
	if i < 0 {
		return false
	}
	w.Items = append(w.Items[:i], w.Items[i+1:]...)
	return true
}

// CorruptDataError describes a stored entry that does not decode into an
// Item.
type CorruptDataError struct {
	Index int
	Raw   string
	Err   error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("wishlist entry %d %q: %v", e.Index, e.Raw, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

var (
	errObjectString = errors.New("stringified object placeholder")
	errNoProduct    = errors.New("missing productId")
)

// DecodeItems reads the stored item array. Entries may be objects or, for
// rows written by older clients, JSON strings holding an object. Entries that
// fail to decode are skipped and reported; only an unreadable array fails the
// whole read.
func DecodeItems(raw []byte) ([]Item, []error) {
	items := []Item{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return items, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return items, []error{&CorruptDataError{Index: -1, Raw: string(raw), Err: err}}
	}

	var corrupt []error
	for i, e := range entries {
		it, ok, err := decodeEntry(e)
		if err != nil {
			corrupt = append(corrupt, &CorruptDataError{Index: i, Raw: string(e), Err: err})
			continue
		}
		if ok {
			items = append(items, it)
		}
	}

	return items, corrupt
}

func decodeEntry(e json.RawMessage) (Item, bool, error) {
	e = bytes.TrimSpace(e)
	if len(e) == 0 || bytes.Equal(e, []byte("null")) {
		return Item{}, false, nil
	}

	if e[0] == '"' {
		var s string
		if err := json.Unmarshal(e, &s); err != nil {
			return Item{}, false, err
		}
		if strings.Contains(s, "[object Object]") {
			return Item{}, false, errObjectString
		}
		e = json.RawMessage(s)
	}

	var it Item
	if err := json.Unmarshal(e, &it); err != nil {
		return Item{}, false, err
	}
	if it.ProductID == "" {
		return Item{}, false, errNoProduct
	}

	return it, true, nil
}

// row is the stored shape of a wishlist.
type row struct {
	ID                string         `db:"wishlist_id"`
	UserID            *string        `db:"user_id"`
	SessionWishlistID *string        `db:"session_wishlist_id"`
	Items             types.JSONText `db:"items"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r row) toWishlist() Wishlist {
	items, corrupt := DecodeItems(r.Items)
	return Wishlist{
		ID:                r.ID,
		UserID:            r.UserID,
		SessionWishlistID: r.SessionWishlistID,
		Items:             items,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Corrupt:           corrupt,
	}
}

func toRow(w Wishlist) (row, error) {
	items := w.Items
	if items == nil {
		items = []Item{}
	}

	b, err := json.Marshal(items)
	if err != nil {
		return row{}, fmt.Errorf("encoding wishlist items: %w", err)
	}

	return row{
		ID:                w.ID,
		UserID:            w.UserID,
		SessionWishlistID: w.SessionWishlistID,
		Items:             types.JSONText(b),
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}, nil
}
