package domain

import (
	"context"
	"time"
)

// User is an account document. PasswordHash never leaves the service
// boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInput carries the fields accepted on account creation.
type UserInput struct {
	Name     string
	Email    string
	Active   *bool
	Password string
}

// UserUpdate carries a partial account update; nil fields are untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Active   *bool
	Password *string
}

// UserRepository captures account persistence. FindByEmail returns
// ErrUserNotFound when no account matches.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) (string, error)
	SetFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}
