//go:build integration

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/agenda/internal/domain"
)

func setupDatabase(t *testing.T, ctx context.Context) *mongo.Database {
	t.Helper()

	container, err := mongocontainer.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("agenda_test")
}

func intRef(v int) *int { return &v }

func TestActivityRepositoryRespectsOwnership(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(setupDatabase(t, ctx))

	rec := domain.Record{
		OwnerID:     "owner-a",
		Name:        "enc1:abc",
		Category:    "enc1:def",
		Description: "enc1:ghi",
		Priority:    intRef(3),
		DueAt:       "2024-06-01T09:00:00+00:00",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		Status:      "En curso",
	}

	id, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := repo.Get(ctx, "owner-a", id)
	require.NoError(t, err)
	require.Equal(t, rec.Name, stored.Name)
	require.Equal(t, 3, *stored.Priority)
	require.Equal(t, "2024-06-01T09:00:00+00:00", stored.DueAt)

	_, err = repo.Get(ctx, "owner-b", id)
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	err = repo.SetFields(ctx, "owner-b", id, map[string]any{"priority": 1})
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	err = repo.Delete(ctx, "owner-b", id)
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	require.NoError(t, repo.Delete(ctx, "owner-a", id))
}

func TestActivityRepositoryRoundTripsHeterogeneousShapes(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(setupDatabase(t, ctx))

	rec := domain.Record{
		OwnerID:   "owner-a",
		Name:      "shapes",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Status:    "En curso",
		DueAt:     map[string]any{"$date": "2023-02-03T04:05:06Z"},
		Contacts: []any{
			map[string]any{"to": "a@example.com", "junk": "kept-in-store"},
			"not-a-map",
		},
	}

	id, err := repo.Create(ctx, rec)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, "owner-a", id)
	require.NoError(t, err)

	// Driver containers must come back as plain Go shapes.
	due, ok := stored.DueAt.(map[string]any)
	require.True(t, ok, "DueAt is %T", stored.DueAt)
	require.Equal(t, "2023-02-03T04:05:06Z", due["$date"])

	contacts, ok := stored.Contacts.([]any)
	require.True(t, ok, "Contacts is %T", stored.Contacts)
	require.Len(t, contacts, 2)
	first, ok := contacts[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "a@example.com", first["to"])
	require.Equal(t, "not-a-map", contacts[1])
}

func TestActivityRepositoryReplaceOverwritesDocumentInFull(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(setupDatabase(t, ctx))

	created := time.Now().UTC().Truncate(time.Millisecond)
	id, err := repo.Create(ctx, domain.Record{
		OwnerID:   "owner-a",
		Name:      "v1",
		Priority:  intRef(4),
		Status:    "En curso",
		CreatedAt: created,
	})
	require.NoError(t, err)

	replacement := domain.Record{
		OwnerID:   "owner-a",
		Name:      "v2",
		Status:    "En revisión",
		CreatedAt: created,
	}

	err = repo.Replace(ctx, "owner-b", id, replacement)
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	require.NoError(t, repo.Replace(ctx, "owner-a", id, replacement))

	stored, err := repo.Get(ctx, "owner-a", id)
	require.NoError(t, err)
	require.Equal(t, id, stored.ID)
	require.Equal(t, "v2", stored.Name)
	require.Nil(t, stored.Priority, "replace is a full overwrite, fields absent from the replacement must not survive")
	require.True(t, created.Equal(stored.CreatedAt), "created_at must round-trip exactly as supplied")
}

func TestActivityRepositoryListActiveFiltersStatuses(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(setupDatabase(t, ctx))

	now := time.Now().UTC()
	for _, rec := range []domain.Record{
		{OwnerID: "owner-a", Name: "open", Status: "En curso", CreatedAt: now},
		{OwnerID: "owner-a", Name: "closed", Status: domain.StatusClosed, CreatedAt: now},
		{OwnerID: "owner-a", Name: "finished", Status: domain.StatusFinished, CreatedAt: now},
		{OwnerID: "owner-b", Name: "other-owner", Status: "En curso", CreatedAt: now},
	} {
		_, err := repo.Create(ctx, rec)
		require.NoError(t, err)
	}

	active, err := repo.ListActive(ctx, "owner-a", domain.ExcludedStatuses)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "open", active[0].Name)

	all, err := repo.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestUserRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupDatabase(t, ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	id, err := repo.Create(ctx, domain.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		Active:       true,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	byEmail, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)

	require.NoError(t, repo.SetFields(ctx, id, map[string]any{"active": false}))
	byID, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.False(t, byID.Active)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.FindByID(ctx, id)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
