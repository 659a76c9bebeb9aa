package user

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// NoName marks a user whose display name has not been set yet.
const NoName = "NO_NAME"

type User struct {
	ID            string    `json:"id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  *string   `json:"-" db:"password_hash"`
	Role          string    `json:"role" db:"role"`
	Address       *Address  `json:"address,omitempty" db:"address"`
	PaymentMethod *string   `json:"paymentMethod,omitempty" db:"payment_method"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type Address struct {
	FullName      string `json:"fullName" validate:"required,min=3"`
	StreetAddress string `json:"streetAddress" validate:"required,min=3"`
	City          string `json:"city" validate:"required,min=3"`
	PostalCode    string `json:"postalCode" validate:"required,min=3"`
	Country       string `json:"country" validate:"required,min=3"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		return nil
	}
	return errors.New("address: unsupported source type")
}

type ProfileUp struct {
	Name string `json:"name" validate:"required,min=3"`
}

type PaymentMethodUp struct {
	Type string `json:"type" validate:"required,oneof=PayPal Stripe CashOnDelivery"`
}
