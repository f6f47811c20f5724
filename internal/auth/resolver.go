package auth

import (
	"context"
	"errors"
	"fmt"

	"example.com/agenda/internal/domain"
)

// Resolver turns Authorization header values into identities. The token
// subject is the account email; the account must still exist at request
// time for the token to be honored.
type Resolver struct {
	users domain.UserRepository
	cfg   Config
}

// NewResolver constructs a Resolver.
func NewResolver(users domain.UserRepository, cfg Config) *Resolver {
	return &Resolver{users: users, cfg: cfg}
}

// Resolve validates the header and loads the matching account.
func (r *Resolver) Resolve(ctx context.Context, header string) (domain.Identity, error) {
	token, err := StripBearer(header)
	if err != nil {
		return domain.Identity{}, err
	}

	claims, err := Parse(token, r.cfg)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := r.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Identity{}, ErrUnknownIdentity
		}
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	return domain.Identity{ID: user.ID, Email: user.Email}, nil
}
