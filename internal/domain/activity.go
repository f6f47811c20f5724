// Package domain defines the business logic for the agenda service.
package domain

import (
	"context"
	"errors"
	"time"

	"example.com/agenda/internal/normalize"
)

var (
	// ErrActivityNotFound is returned when no activity matches the id and
	// owner pair. Ownership mismatches are indistinguishable from missing
	// documents.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrUserNotFound is returned when an account cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when creating an account with an email that
	// is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on login with a wrong email or
	// password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Reserved status values. Status is otherwise free-form; these two are
// excluded from priority reconciliation, and the toggle operation flips
// between closed and in-review.
const (
	StatusClosed   = "Cerrado"
	StatusFinished = "Finalizado"
	StatusInReview = "En revisión"
)

// ExcludedStatuses lists the terminal states reconciliation never touches.
var ExcludedStatuses = []string{StatusFinished, StatusClosed}

// Identity is the resolved representation of the authenticated caller.
// Every data access is scoped by its ID.
type Identity struct {
	ID    string
	Email string
}

// Contact aliases the canonical contact record shape.
type Contact = normalize.Contact

// Activity is the canonical, decrypted, normalized shape handed to
// callers.
type Activity struct {
	ID          string
	OwnerID     string
	Name        string
	Category    string
	Description string
	Priority    *int
	DueAt       time.Time
	CreatedAt   time.Time
	Status      string
	Contacts    []Contact
}

// Record is the persisted shape of an activity: sensitive fields may hold
// ciphertext, and the due-at and contacts values keep whatever shape the
// stored document had. Legacy rows predate both encryption and timestamp
// canonicalization, so readers must tolerate all of it.
type Record struct {
	ID          string
	OwnerID     string
	Name        string
	Category    string
	Description string
	Priority    *int
	DueAt       any
	CreatedAt   time.Time
	Status      string
	Contacts    any
}

// ActivityInput carries user-editable fields as they arrived on the wire,
// before normalization.
type ActivityInput struct {
	Name        string
	Category    string
	Description string
	Priority    *int
	DueAt       any
	Status      string
	Contacts    any
}

// ActivityRepository captures owner-scoped persistence operations. Every
// filter folds the owner id in; Get, Replace, SetFields and Delete fail
// with ErrActivityNotFound when no owned document matches.
type ActivityRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	ListActive(ctx context.Context, ownerID string, excludedStatuses []string) ([]Record, error)
	Get(ctx context.Context, ownerID, activityID string) (*Record, error)
	Create(ctx context.Context, rec Record) (string, error)
	Replace(ctx context.Context, ownerID, activityID string, rec Record) error
	SetFields(ctx context.Context, ownerID, activityID string, fields map[string]any) error
	Delete(ctx context.Context, ownerID, activityID string) error
}

// EncryptionReport describes whether an activity's stored values are
// actually ciphertext. Useful for auditing rows written before encryption
// was introduced.
type EncryptionReport struct {
	ActivityID           string
	DescriptionEncrypted bool
	ContactsEncrypted    bool
	EncryptedRoleValues  int
}

// Event is an activity lifecycle notification handed to the publisher
// after the store write succeeded.
type Event struct {
	ID         string
	Type       string
	OwnerID    string
	ActivityID string
	OccurredAt time.Time
}

// Lifecycle event types.
const (
	EventActivityCreated       = "activity.created"
	EventActivityUpdated       = "activity.updated"
	EventActivityDeleted       = "activity.deleted"
	EventActivityStatusChanged = "activity.status_changed"
	EventActivityReconciled    = "activity.reconciled"
)

// EventPublisher delivers lifecycle events. Implementations must not
// block request handling on broker availability.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event)
}
