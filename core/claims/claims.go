// Package claims carries the authenticated user of a request.
package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var ErrMissing = errors.New("no authenticated user in context")

// Claims is what the session remembers about its user.
type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (c Claims) Admin() bool { return c.Role == RoleAdmin }

// Owns reports whether c may act on the account userID: its own, or any
// account for admins.
func (c Claims) Owns(userID string) bool {
	return c.UserID == userID || c.Admin()
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func Get(ctx context.Context) (Claims, error) {
	c, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, ErrMissing
	}
	return c, nil
}

func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	return err == nil && c.Admin()
}

// CanAccess is Owns for the user of ctx. Anonymous requests own nothing.
func CanAccess(ctx context.Context, userID string) bool {
	c, err := Get(ctx)
	return err == nil && c.Owns(userID)
}
