package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windlass-labs/windlass/internal/adapters/driven/storage/memory"
	"github.com/windlass-labs/windlass/internal/core/domain"
)

func TestSyncScheduler_RunOnceEmptySet(t *testing.T) {
	store := memory.NewOrganisationStore()
	dispatcher := &mockDispatcher{}
	scheduler := NewSyncScheduler(store, dispatcher, nil, time.Hour)

	report, err := scheduler.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.OrganisationIDs)
	assert.Empty(t, dispatcher.dispatched())
}

func TestSyncScheduler_RunOnceDispatchesFirstPageJobs(t *testing.T) {
	store := memory.NewOrganisationStore()
	saveOrg(t, store, testOrg("org-1"))
	saveOrg(t, store, testOrg("org-2"))
	saveOrg(t, store, testOrg("org-3"))

	dispatcher := &mockDispatcher{}
	scheduler := NewSyncScheduler(store, dispatcher, nil, time.Hour)

	report, err := scheduler.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Len(t, report.OrganisationIDs, 3)

	jobs := dispatcher.dispatched()
	require.Len(t, jobs, 3)
	for _, job := range jobs {
		assert.True(t, job.FirstPage(), "scheduled jobs always target the first page")
		assert.False(t, job.IsFirstSync)
		// Every job in one pass shares the pass watermark.
		assert.Equal(t, report.StartedAt, job.SyncStartedAt)
	}
}

func TestSyncScheduler_EligibilityPolicyFilters(t *testing.T) {
	store := memory.NewOrganisationStore()

	fresh := testOrg("fresh")
	fresh.LastSyncAt = time.Now().Add(-5 * time.Minute)
	saveOrg(t, store, fresh)

	stale := testOrg("stale")
	stale.LastSyncAt = time.Now().Add(-2 * time.Hour)
	saveOrg(t, store, stale)

	never := testOrg("never")
	saveOrg(t, store, never)

	dispatcher := &mockDispatcher{}
	scheduler := NewSyncScheduler(store, dispatcher, domain.NotSyncedWithin(time.Hour), time.Hour)

	report, err := scheduler.RunOnce(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"stale", "never"}, report.OrganisationIDs)
	assert.Len(t, dispatcher.dispatched(), 2)
}

func TestSyncScheduler_ScheduleNowBypassesPolicy(t *testing.T) {
	store := memory.NewOrganisationStore()

	fresh := testOrg("fresh")
	fresh.LastSyncAt = time.Now()
	saveOrg(t, store, fresh)

	dispatcher := &mockDispatcher{}
	// A policy that admits nothing.
	scheduler := NewSyncScheduler(store, dispatcher, func(domain.Organisation, time.Time) bool { return false }, time.Hour)

	require.NoError(t, scheduler.ScheduleNow(context.Background(), "fresh", true))

	jobs := dispatcher.dispatched()
	require.Len(t, jobs, 1)
	assert.Equal(t, "fresh", jobs[0].OrganisationID)
	assert.True(t, jobs[0].IsFirstSync)
	assert.True(t, jobs[0].FirstPage())
}

func TestSyncScheduler_ScheduleNowUnknownOrganisation(t *testing.T) {
	store := memory.NewOrganisationStore()
	scheduler := NewSyncScheduler(store, &mockDispatcher{}, nil, time.Hour)

	err := scheduler.ScheduleNow(context.Background(), "missing", false)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncScheduler_StartStopLifecycle(t *testing.T) {
	store := memory.NewOrganisationStore()
	saveOrg(t, store, testOrg("org-1"))

	dispatcher := &mockDispatcher{}
	scheduler := NewSyncScheduler(store, dispatcher, nil, time.Hour)

	done := make(chan error, 1)
	go func() {
		done <- scheduler.Start(context.Background())
	}()

	// The initial pass runs immediately on startup.
	require.Eventually(t, func() bool {
		return len(dispatcher.dispatched()) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSyncScheduler_SetInterval(t *testing.T) {
	scheduler := NewSyncScheduler(memory.NewOrganisationStore(), &mockDispatcher{}, nil, time.Hour)

	assert.Equal(t, time.Hour, scheduler.Interval())
	scheduler.SetInterval(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, scheduler.Interval())
}
