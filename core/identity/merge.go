package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Ledger moves one kind of record between an anonymous owner and a user.
// Every method must succeed as a no-op when the targeted rows are gone.
type Ledger interface {
	// FindBySession returns the id of the record owned by sessionID, or
	// database.ErrDBNotFound. The row stays locked until tx ends.
	FindBySession(ctx context.Context, tx sqlx.ExtContext, sessionID string) (string, error)
	DeleteOwned(ctx context.Context, tx sqlx.ExtContext, userID string) (int64, error)
	Reassign(ctx context.Context, tx sqlx.ExtContext, recordID, sessionID, userID string) (int64, error)
}

// Resource binds a ledger to the identifier that selects its guest record.
type Resource struct {
	Name   string
	Ledger Ledger
	Key    func(Identity) string
}

func CartResource(l Ledger) Resource {
	return Resource{Name: "cart", Ledger: l, Key: func(id Identity) string { return id.CartID }}
}

func WishlistResource(l Ledger) Resource {
	return Resource{Name: "wishlist", Ledger: l, Key: func(id Identity) string { return id.WishlistID }}
}

// Users is the slice of the user store the merger needs.
type Users interface {
	Fetch(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, u user.User) error
}

// TxFunc runs fn in one transaction bound to ctx.
type TxFunc func(ctx context.Context, fn func(tx sqlx.ExtContext) error) error

// MergeError reports a failed hand-over of one resource. It is logged, never
// shown to the user.
type MergeError struct {
	Resource string
	UserID   string
	Err      error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merging guest %s into user[%s]: %v", e.Resource, e.UserID, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

type Merger struct {
	log       logrus.FieldLogger
	tx        TxFunc
	users     Users
	resources []Resource
}

func NewMerger(log logrus.FieldLogger, db *sqlx.DB, resources ...Resource) *Merger {
	tx := func(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
		return database.Transaction(ctx, db, fn)
	}
	return newMerger(log, tx, dbUsers{db: db}, resources...)
}

func newMerger(log logrus.FieldLogger, tx TxFunc, users Users, resources ...Resource) *Merger {
	return &Merger{
		log:       log,
		tx:        tx,
		users:     users,
		resources: resources,
	}
}

// Run hands the guest records of id over to u and settles u's display name.
// Failures are logged and dropped: the caller always proceeds with sign-in.
// The returned user carries the name that is now stored.
func (m *Merger) Run(ctx context.Context, u user.User, id Identity) user.User {
	if err := m.Adopt(ctx, u.ID, id); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				m.logFailure(u.ID, e)
			}
		} else {
			m.logFailure(u.ID, err)
		}
	}

	named, err := m.EnsureName(ctx, u)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"user_id": u.ID,
			"message": err,
		}).Error("setting default user name")
		return u
	}

	return named
}

func (m *Merger) logFailure(userID string, err error) {
	fields := logrus.Fields{"user_id": userID, "message": err}

	var me *MergeError
	if errors.As(err, &me) {
		fields["resource"] = me.Resource
	}

	m.log.WithFields(fields).Error("guest merge failed")
}

// Adopt moves every guest record named by id to userID. Resources are
// handled concurrently; each one is a single transaction.
func (m *Merger) Adopt(ctx context.Context, userID string, id Identity) error {
	var g multierror.Group
	for _, res := range m.resources {
		res := res
		g.Go(func() error {
			return m.adopt(ctx, res, res.Key(id), userID)
		})
	}

	return g.Wait().ErrorOrNil()
}

func (m *Merger) adopt(ctx context.Context, res Resource, sessionID, userID string) error {
	if sessionID == "" {
		return nil
	}

	err := m.tx(ctx, func(tx sqlx.ExtContext) error {
		recordID, err := res.Ledger.FindBySession(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return nil
			}
			return fmt.Errorf("finding guest record: %w", err)
		}

		if _, err := res.Ledger.DeleteOwned(ctx, tx, userID); err != nil {
			return fmt.Errorf("deleting records of user: %w", err)
		}

		if _, err := res.Ledger.Reassign(ctx, tx, recordID, sessionID, userID); err != nil {
			return fmt.Errorf("reassigning record[%s]: %w", recordID, err)
		}

		return nil
	})

	if err != nil {
		return &MergeError{Resource: res.Name, UserID: userID, Err: err}
	}
	return nil
}

// EnsureName replaces the NoName placeholder with the local part of the
// user's email. Users that already have a name are returned untouched.
func (m *Merger) EnsureName(ctx context.Context, u user.User) (user.User, error) {
	if u.Name != user.NoName {
		return u, nil
	}

	stored, err := m.users.Fetch(ctx, u.ID)
	if err != nil {
		return u, fmt.Errorf("fetching user[%s]: %w", u.ID, err)
	}

	if stored.Name != user.NoName {
		return stored, nil
	}

	stored.Name = DefaultName(stored.Email)
	stored.UpdatedAt = time.Now().UTC()

	if err := m.users.Update(ctx, stored); err != nil {
		return u, fmt.Errorf("updating user[%s]: %w", u.ID, err)
	}

	return stored, nil
}

// DefaultName is the part of email before the first "@".
func DefaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

type dbUsers struct {
	db *sqlx.DB
}

func (s dbUsers) Fetch(ctx context.Context, id string) (user.User, error) {
	return user.Fetch(ctx, s.db, id)
}

func (s dbUsers) Update(ctx context.Context, u user.User) error {
	return user.Update(ctx, s.db, u)
}
