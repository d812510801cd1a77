package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncJobWithCursor(t *testing.T) {
	started := time.Now()
	job := SyncJob{
		OrganisationID: "org-1",
		Region:         "eu",
		IsFirstSync:    true,
		SyncStartedAt:  started,
	}

	assert.True(t, job.FirstPage())

	next := job.WithCursor("p2")

	assert.False(t, next.FirstPage())
	assert.Equal(t, "p2", next.Cursor)
	// Everything except the cursor carries over, watermark included.
	assert.Equal(t, job.OrganisationID, next.OrganisationID)
	assert.Equal(t, job.Region, next.Region)
	assert.Equal(t, job.IsFirstSync, next.IsFirstSync)
	assert.Equal(t, started, next.SyncStartedAt)

	// The original job is untouched.
	assert.Empty(t, job.Cursor)
}

func TestUserPageHasMore(t *testing.T) {
	assert.False(t, (&UserPage{}).HasMore())
	assert.True(t, (&UserPage{NextCursor: "p2"}).HasMore())
}
