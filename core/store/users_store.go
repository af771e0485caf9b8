package store

import (
	"context"
	"database/sql"
	"errors"
)

// User is an account row. Only admins carry a password hash; reporter
// accounts are created implicitly and never log in.
type User struct {
	ID           int64
	FullName     string
	Email        string
	Phone        string
	UserType     string
	IsVerified   bool
	IsActive     bool
	PasswordHash string
}

type UsersStore interface {
	// Create inserts the user, tolerating a duplicate email, and
	// returns the stored row.
	Create(ctx context.Context, u *User) (*User, error)
	// FindByEmail returns ErrNotFound when no user has the address.
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type usersStore struct {
	db *DB
}

func NewUsersStore(db *DB) UsersStore {
	return &usersStore{db: db}
}

func (s *usersStore) Create(ctx context.Context, u *User) (*User, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO users (full_name, email, phone, user_type, password_hash, is_verified, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`,
		u.FullName, nullable(u.Email), nullable(u.Phone), u.UserType,
		nullable(u.PasswordHash), u.IsVerified, u.IsActive); err != nil {
		return nil, err
	}
	return s.FindByEmail(ctx, u.Email)
}

func (s *usersStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row, err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, COALESCE(email, ''), COALESCE(phone, ''), user_type,
			is_verified, is_active, COALESCE(password_hash, '')
		FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, err
	}
	var u User
	err = row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.UserType,
		&u.IsVerified, &u.IsActive, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &QueryError{Query: "select user by email", Err: err}
	}
	return &u, nil
}
