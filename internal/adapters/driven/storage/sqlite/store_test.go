package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

func newTestStore(t *testing.T) driven.OrganisationStore {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store.OrganisationStore()
}

func TestOrganisationStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	org := domain.Organisation{
		ID:            "org-1",
		Region:        "eu",
		ConnectorType: "github",
		Credential:    "token",
		Config:        map[string]string{"org": "acme"},
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, org))

	got, err := store.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "eu", got.Region)
	assert.Equal(t, "github", got.ConnectorType)
	assert.Equal(t, "token", got.Credential)
	assert.Equal(t, "acme", got.Config["org"])
	assert.True(t, got.LastSyncAt.IsZero())
}

func TestOrganisationStore_SaveUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	org := domain.Organisation{ID: "org-1", ConnectorType: "github", Credential: "old"}
	require.NoError(t, store.Save(ctx, org))

	org.Credential = "rotated"
	require.NoError(t, store.Save(ctx, org))

	got, err := store.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Credential)

	orgs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}

func TestOrganisationStore_SaveValidation(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(context.Background(), domain.Organisation{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrganisationStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrganisationStore_Remove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Organisation{ID: "org-1", ConnectorType: "github"}))
	require.NoError(t, store.Remove(ctx, "org-1"))

	_, err := store.Get(ctx, "org-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Remove(ctx, "org-1"), domain.ErrNotFound)
}

func TestOrganisationStore_SetLastSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Organisation{ID: "org-1", ConnectorType: "github"}))

	started := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLastSync(ctx, "org-1", started))

	got, err := store.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.True(t, started.Equal(got.LastSyncAt))

	assert.ErrorIs(t, store.SetLastSync(ctx, "missing", started), domain.ErrNotFound)
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.OrganisationStore().Save(ctx, domain.Organisation{ID: "org-1", ConnectorType: "dropbox"}))
	require.NoError(t, store.Close())

	// Reopening runs migrations again; they must be no-ops and the data
	// must survive.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.OrganisationStore().Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "dropbox", got.ConnectorType)
}
