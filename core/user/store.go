package user

import (
	"context"

	"github.com/irsalhamdi/storefront/database"
	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	INSERT INTO users
		(user_id, name, email, password_hash, role, created_at, updated_at)
	VALUES
		(:user_id, :name, :email, :password_hash, :role, :created_at, :updated_at)`

	if _, err := database.NamedExecContext(ctx, db, q, u); err != nil {
		return err
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	const q = `
	SELECT *
	FROM users
	WHERE user_id = $1`

	var u User
	if err := database.GetContext(ctx, db, &u, q, id); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `
	SELECT *
	FROM users
	WHERE email = $1`

	var u User
	if err := database.GetContext(ctx, db, &u, q, email); err != nil {
		return User{}, err
	}

	return u, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]User, error) {
	const q = `
	SELECT *
	FROM users
	ORDER BY created_at DESC`

	us := []User{}
	if err := database.SelectContext(ctx, db, &us, q); err != nil {
		return nil, err
	}

	return us, nil
}

// Update writes the mutable profile fields of u. A missing user is not an
// error.
func Update(ctx context.Context, db sqlx.ExtContext, u User) error {
	const q = `
	UPDATE users SET
		name = :name,
		address = :address,
		payment_method = :payment_method,
		updated_at = :updated_at
	WHERE user_id = :user_id`

	if _, err := database.NamedExecContext(ctx, db, q, u); err != nil {
		return err
	}

	return nil
}
