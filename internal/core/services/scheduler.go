package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
	"github.com/windlass-labs/windlass/internal/core/ports/driving"
	"github.com/windlass-labs/windlass/internal/logger"
)

// Ensure SyncScheduler implements the interface.
var _ driving.Scheduler = (*SyncScheduler)(nil)

// SyncScheduler enumerates organisations due for sync on a recurring
// interval and dispatches one first-page job per organisation. All jobs
// emitted in one pass share the same SyncStartedAt watermark.
//
// The scheduler never contacts remote APIs itself; its only side effect
// is job emission.
type SyncScheduler struct {
	orgs       driven.OrganisationStore
	dispatcher driven.Dispatcher
	policy     domain.EligibilityPolicy

	mu       sync.Mutex
	interval time.Duration
	running  bool
	stopCh   chan struct{}
}

// NewSyncScheduler creates a scheduler. A nil policy defaults to
// domain.SyncAll.
func NewSyncScheduler(
	orgs driven.OrganisationStore,
	dispatcher driven.Dispatcher,
	policy domain.EligibilityPolicy,
	interval time.Duration,
) *SyncScheduler {
	if policy == nil {
		policy = domain.SyncAll
	}
	return &SyncScheduler{
		orgs:       orgs,
		dispatcher: dispatcher,
		policy:     policy,
		interval:   interval,
	}
}

// Start begins the scheduler loop. An enumeration pass runs immediately
// on startup, then once per interval. Blocks until Stop is called or
// the context is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if _, err := s.RunOnce(ctx); err != nil {
		logger.Warn("scheduler: initial pass failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-time.After(s.Interval()):
			if _, err := s.RunOnce(ctx); err != nil {
				// An enumeration failure is fatal to this pass only;
				// the next tick retries naturally.
				logger.Warn("scheduler: pass failed: %v", err)
			}
		}
	}
}

// Stop gracefully shuts down the scheduler.
func (s *SyncScheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	return nil
}

// Interval returns the current tick interval.
func (s *SyncScheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the tick interval. Takes effect after the next
// tick; used by config reload.
func (s *SyncScheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// RunOnce performs a single enumeration pass: list organisations,
// filter through the eligibility policy and dispatch one job each.
// An empty eligible set dispatches nothing and returns an empty report.
func (s *SyncScheduler) RunOnce(ctx context.Context) (*driving.ScheduleReport, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organisations: %w", err)
	}

	now := time.Now()
	report := &driving.ScheduleReport{StartedAt: now}

	var errs []error
	for _, org := range orgs {
		if !s.policy(org, now) {
			continue
		}
		job := domain.SyncJob{
			OrganisationID: org.ID,
			Region:         org.Region,
			IsFirstSync:    false,
			SyncStartedAt:  now,
		}
		if err := s.dispatcher.Dispatch(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("dispatch %s: %w", org.ID, err))
			continue
		}
		report.OrganisationIDs = append(report.OrganisationIDs, org.ID)
	}

	if len(report.OrganisationIDs) > 0 {
		logger.Info("scheduler: dispatched sync for %d organisation(s)", len(report.OrganisationIDs))
	}
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

// ScheduleNow dispatches a sync for one organisation immediately,
// bypassing the eligibility policy. Used for initial syncs right after
// a connection is established and for manual triggers.
func (s *SyncScheduler) ScheduleNow(ctx context.Context, organisationID string, firstSync bool) error {
	org, err := s.orgs.Get(ctx, organisationID)
	if err != nil {
		return fmt.Errorf("get organisation: %w", err)
	}

	job := domain.SyncJob{
		OrganisationID: org.ID,
		Region:         org.Region,
		IsFirstSync:    firstSync,
		SyncStartedAt:  time.Now(),
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		return fmt.Errorf("dispatch %s: %w", org.ID, err)
	}
	return nil
}
