package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windlass-labs/windlass/internal/core/domain"
)

func TestOrganisationStore_SaveAndGet(t *testing.T) {
	store := NewOrganisationStore()
	ctx := context.Background()

	org := domain.Organisation{
		ID:            "org-1",
		ConnectorType: "github",
		Credential:    "token",
		Config:        map[string]string{"org": "acme"},
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, org))

	got, err := store.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, org.ConnectorType, got.ConnectorType)
	assert.Equal(t, "acme", got.Config["org"])
}

func TestOrganisationStore_SaveValidation(t *testing.T) {
	store := NewOrganisationStore()

	err := store.Save(context.Background(), domain.Organisation{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOrganisationStore_GetNotFound(t *testing.T) {
	store := NewOrganisationStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrganisationStore_List(t *testing.T) {
	store := NewOrganisationStore()
	ctx := context.Background()

	orgs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orgs)

	require.NoError(t, store.Save(ctx, domain.Organisation{ID: "a"}))
	require.NoError(t, store.Save(ctx, domain.Organisation{ID: "b"}))

	orgs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)
}

func TestOrganisationStore_Remove(t *testing.T) {
	store := NewOrganisationStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Organisation{ID: "org-1"}))
	require.NoError(t, store.Remove(ctx, "org-1"))

	_, err := store.Get(ctx, "org-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Remove(ctx, "org-1"), domain.ErrNotFound)
}

func TestOrganisationStore_SetLastSync(t *testing.T) {
	store := NewOrganisationStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Organisation{ID: "org-1"}))

	started := time.Now().UTC()
	require.NoError(t, store.SetLastSync(ctx, "org-1", started))

	got, err := store.Get(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, started, got.LastSyncAt)

	assert.ErrorIs(t, store.SetLastSync(ctx, "missing", started), domain.ErrNotFound)
}
