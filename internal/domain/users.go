package domain

import (
	"context"
	"errors"
	"time"

	"example.com/agenda/internal/secrets"
)

// UserService orchestrates account workflows. Passwords are hashed here;
// the repository only ever sees the hash.
type UserService struct {
	repo UserRepository
	now  func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one account by id.
func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers an account after checking email uniqueness.
func (s *UserService) Create(ctx context.Context, input UserInput) (*User, error) {
	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := secrets.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := User{
		Name:         input.Name,
		Email:        input.Email,
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// Update applies a partial account update and returns the refreshed
// document. A password in the update is re-hashed.
func (s *UserService) Update(ctx context.Context, id string, update UserUpdate) (*User, error) {
	fields := map[string]any{"updated_at": s.now()}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Active != nil {
		fields["active"] = *update.Active
	}
	if update.Password != nil {
		hash, err := secrets.Hash(*update.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if err := s.repo.SetFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ToggleActive flips the account's active flag and returns the refreshed
// document.
func (s *UserService) ToggleActive(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"active":     !user.Active,
		"updated_at": s.now(),
	}
	if err := s.repo.SetFields(ctx, id, fields); err != nil {
		return nil, err
	}
	user.Active = !user.Active
	return user, nil
}

// Authenticate verifies an email/password pair and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
