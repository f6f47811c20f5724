package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"example.com/agenda/internal/crypto"
	"example.com/agenda/internal/locks"
	"example.com/agenda/internal/normalize"
)

// Service orchestrates activity workflows. It scopes every store call to
// the caller's identity and keeps the field pipeline ordered: normalize
// then encrypt on writes, decrypt then normalize on reads.
type Service struct {
	repo      ActivityRepository
	cipher    *crypto.Cipher
	publisher EventPublisher
	locker    locks.Locker
	log       zerolog.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo ActivityRepository, cipher *crypto.Cipher, publisher EventPublisher, locker locks.Locker, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		cipher:    cipher,
		publisher: publisher,
		locker:    locker,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns all of the identity's activities, decrypted and
// normalized.
func (s *Service) List(ctx context.Context, who Identity) ([]Activity, error) {
	recs, err := s.repo.ListByOwner(ctx, who.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.toActivity(rec))
	}
	return out, nil
}

// Get returns one owned activity, decrypted and normalized.
func (s *Service) Get(ctx context.Context, who Identity, activityID string) (*Activity, error) {
	rec, err := s.repo.Get(ctx, who.ID, activityID)
	if err != nil {
		return nil, err
	}
	act := s.toActivity(*rec)
	return &act, nil
}

// Create normalizes and encrypts the input, assigns owner and creation
// time server-side, and persists. The response echoes the caller's
// plaintext, never a re-read of the encrypted row.
func (s *Service) Create(ctx context.Context, who Identity, input ActivityInput) (*Activity, error) {
	act := s.fromInput(who, input)
	act.CreatedAt = s.now()

	id, err := s.repo.Create(ctx, s.toRecord(act))
	if err != nil {
		return nil, err
	}
	act.ID = id

	s.publish(ctx, EventActivityCreated, who, id)
	return &act, nil
}

// Update replaces the user-editable fields of an owned activity. The
// owner and creation timestamp are never touched: the stored CreatedAt
// is read back and carried into the replacement document, since the
// repository overwrites documents in full.
func (s *Service) Update(ctx context.Context, who Identity, activityID string, input ActivityInput) (*Activity, error) {
	existing, err := s.repo.Get(ctx, who.ID, activityID)
	if err != nil {
		return nil, err
	}

	act := s.fromInput(who, input)
	act.ID = activityID
	act.CreatedAt = existing.CreatedAt

	if err := s.repo.Replace(ctx, who.ID, activityID, s.toRecord(act)); err != nil {
		return nil, err
	}

	s.publish(ctx, EventActivityUpdated, who, activityID)
	return &act, nil
}

// Delete removes an owned activity.
func (s *Service) Delete(ctx context.Context, who Identity, activityID string) error {
	if err := s.repo.Delete(ctx, who.ID, activityID); err != nil {
		return err
	}
	s.publish(ctx, EventActivityDeleted, who, activityID)
	return nil
}

// ToggleStatus flips an owned activity between closed and in-review: a
// closed activity reopens, anything else closes.
func (s *Service) ToggleStatus(ctx context.Context, who Identity, activityID string) (*Activity, error) {
	rec, err := s.repo.Get(ctx, who.ID, activityID)
	if err != nil {
		return nil, err
	}

	next := StatusClosed
	if rec.Status == StatusClosed {
		next = StatusInReview
	}
	if err := s.repo.SetFields(ctx, who.ID, activityID, map[string]any{"status": next}); err != nil {
		return nil, err
	}

	rec.Status = next
	act := s.toActivity(*rec)
	s.publish(ctx, EventActivityStatusChanged, who, activityID)
	return &act, nil
}

// VerifyEncryption reports whether the stored values of an owned activity
// are actually ciphertext, using the at-rest format marker rather than
// attempting decryption.
func (s *Service) VerifyEncryption(ctx context.Context, who Identity, activityID string) (*EncryptionReport, error) {
	rec, err := s.repo.Get(ctx, who.ID, activityID)
	if err != nil {
		return nil, err
	}

	report := EncryptionReport{
		ActivityID:           activityID,
		DescriptionEncrypted: rec.Description != "" && s.cipher.LooksEncrypted(rec.Description),
	}
	for _, ct := range normalize.Contacts(rec.Contacts) {
		for _, role := range []string{ct.To, ct.CC, ct.BCC} {
			if role != "" && s.cipher.LooksEncrypted(role) {
				report.EncryptedRoleValues++
			}
		}
	}
	report.ContactsEncrypted = report.EncryptedRoleValues > 0
	return &report, nil
}

// fromInput canonicalizes wire-shaped input into an Activity owned by the
// caller. Normalization runs before encryption on the write path.
func (s *Service) fromInput(who Identity, input ActivityInput) Activity {
	dueAt, _ := normalize.Time(input.DueAt)
	return Activity{
		OwnerID:     who.ID,
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Priority:    input.Priority,
		DueAt:       dueAt,
		Status:      input.Status,
		Contacts:    normalize.Contacts(input.Contacts),
	}
}

// toRecord encrypts the sensitive subset for persistence.
func (s *Service) toRecord(act Activity) Record {
	return Record{
		ID:          act.ID,
		OwnerID:     act.OwnerID,
		Name:        s.cipher.EncryptField(act.Name),
		Category:    s.cipher.EncryptField(act.Category),
		Description: s.cipher.EncryptField(act.Description),
		Priority:    act.Priority,
		DueAt:       act.DueAt,
		CreatedAt:   act.CreatedAt,
		Status:      act.Status,
		Contacts:    s.cipher.EncryptContacts(act.Contacts),
	}
}

// toActivity decrypts the sensitive subset and then normalizes. Decrypt
// runs first: encryption covers the role value strings, not the outer
// contact shape.
func (s *Service) toActivity(rec Record) Activity {
	dueAt, _ := normalize.Time(rec.DueAt)
	return Activity{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Name:        s.cipher.DecryptField(rec.Name),
		Category:    s.cipher.DecryptField(rec.Category),
		Description: s.cipher.DecryptField(rec.Description),
		Priority:    rec.Priority,
		DueAt:       dueAt,
		CreatedAt:   rec.CreatedAt,
		Status:      rec.Status,
		Contacts:    normalize.Contacts(s.cipher.DecryptContacts(rec.Contacts)),
	}
}

func (s *Service) publish(ctx context.Context, eventType string, who Identity, activityID string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, Event{
		Type:       eventType,
		OwnerID:    who.ID,
		ActivityID: activityID,
		OccurredAt: s.now(),
	})
}
