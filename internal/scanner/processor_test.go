package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	"github.com/AssetDocs/legacylocker/internal/domain/profile"
	"github.com/AssetDocs/legacylocker/internal/domain/recovery"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanLockerStore struct {
	lockers map[uuid.UUID]locker.LegacyLocker
}

func (s *scanLockerStore) Create(_ context.Context, l *locker.LegacyLocker) error {
	s.lockers[l.ID] = *l
	return nil
}

func (s *scanLockerStore) GetByID(_ context.Context, id uuid.UUID) (locker.LegacyLocker, error) {
	l, ok := s.lockers[id]
	if !ok {
		return locker.LegacyLocker{}, locker_errors.ErrNotFound
	}
	return l, nil
}

func (s *scanLockerStore) GetByOwner(context.Context, uuid.UUID) (locker.LegacyLocker, error) {
	return locker.LegacyLocker{}, locker_errors.ErrNotFound
}

func (s *scanLockerStore) SetDelegate(context.Context, uuid.UUID, uuid.NullUUID) error { return nil }
func (s *scanLockerStore) SetGracePeriodDays(context.Context, uuid.UUID, int) error    { return nil }

func (s *scanLockerStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to locker.RecoveryStatus) error {
	l, ok := s.lockers[id]
	if !ok || l.RecoveryStatus != from {
		return locker_errors.ErrInvalidState
	}
	l.RecoveryStatus = to
	s.lockers[id] = l
	return nil
}

func (s *scanLockerStore) MarkRecoveryRequested(context.Context, uuid.UUID, time.Time) error {
	return nil
}

func (s *scanLockerStore) ListGracePeriodElapsed(_ context.Context, cutoff time.Time, limit int) ([]locker.LegacyLocker, error) {
	var out []locker.LegacyLocker
	for _, l := range s.lockers {
		switch l.RecoveryStatus {
		case locker.StatusPending, locker.StatusGracePeriodActive:
		default:
			continue
		}
		if l.GracePeriodElapsed(cutoff) {
			out = append(out, l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type scanRequestStore struct {
	requests map[uuid.UUID]recovery.Request
}

func (s *scanRequestStore) Create(_ context.Context, req *recovery.Request) error {
	s.requests[req.ID] = *req
	return nil
}

func (s *scanRequestStore) GetByID(_ context.Context, id uuid.UUID) (recovery.Request, error) {
	req, ok := s.requests[id]
	if !ok {
		return recovery.Request{}, locker_errors.ErrNotFound
	}
	return req, nil
}

func (s *scanRequestStore) GetActiveByLocker(_ context.Context, lockerID uuid.UUID) (recovery.Request, error) {
	for _, req := range s.requests {
		if req.LegacyLockerID == lockerID &&
			(req.Status == recovery.StatusPending || req.Status == recovery.StatusGracePeriodExpired) {
			return req, nil
		}
	}
	return recovery.Request{}, locker_errors.ErrNotFound
}

func (s *scanRequestStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to recovery.RequestStatus, respondedAt *time.Time) error {
	req, ok := s.requests[id]
	if !ok || req.Status != from {
		return locker_errors.ErrInvalidState
	}
	req.Status = to
	req.RespondedAt = respondedAt
	s.requests[id] = req
	return nil
}

func (s *scanRequestStore) PromoteExpired(context.Context, uuid.UUID, recovery.RequestStatus, time.Time) error {
	return nil
}

type scanProfileStore struct {
	profiles map[uuid.UUID]profile.Profile
}

func (s *scanProfileStore) GetByID(_ context.Context, id uuid.UUID) (profile.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return profile.Profile{}, locker_errors.ErrNotFound
	}
	return p, nil
}

type countingNotifier struct {
	accessEmails map[string]int
}

func (n *countingNotifier) SendRecoveryRequestEmail(context.Context, string, string, string, int, string) error {
	return nil
}
func (n *countingNotifier) SendRecoveryApprovedEmail(context.Context, string, string, string) error {
	return nil
}
func (n *countingNotifier) SendRecoveryRejectedEmail(context.Context, string, string, string) error {
	return nil
}

func (n *countingNotifier) SendDelegateAccessEmail(_ context.Context, email, _, _ string) error {
	n.accessEmails[email]++
	return nil
}

type scanFixture struct {
	lockers  *scanLockerStore
	requests *scanRequestStore
	profiles *scanProfileStore
	notifier *countingNotifier
	proc     *Processor
	now      time.Time
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	f := &scanFixture{
		lockers:  &scanLockerStore{lockers: map[uuid.UUID]locker.LegacyLocker{}},
		requests: &scanRequestStore{requests: map[uuid.UUID]recovery.Request{}},
		profiles: &scanProfileStore{profiles: map[uuid.UUID]profile.Profile{}},
		notifier: &countingNotifier{accessEmails: map[string]int{}},
		now:      time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC),
	}
	f.proc = NewProcessor(f.lockers, f.requests, f.profiles, f.notifier, nil, 0)
	f.proc.SetClock(func() time.Time { return f.now })
	return f
}

// addPendingLocker seeds a locker with an open recovery request whose
// grace period started requestedAgo before the fixture clock.
func (f *scanFixture) addPendingLocker(email string, gracePeriodDays int, requestedAgo time.Duration) uuid.UUID {
	ownerID := uuid.New()
	delegateID := uuid.New()
	lockerID := uuid.New()
	requestedAt := f.now.Add(-requestedAgo)

	f.profiles.profiles[ownerID] = profile.Profile{ID: ownerID, Email: "owner+" + email, FullName: "Owner"}
	f.profiles.profiles[delegateID] = profile.Profile{ID: delegateID, Email: email, FullName: "Delegate"}

	f.lockers.lockers[lockerID] = locker.LegacyLocker{
		ID:                  lockerID,
		UserID:              ownerID,
		DelegateUserID:      uuid.NullUUID{UUID: delegateID, Valid: true},
		RecoveryStatus:      locker.StatusPending,
		RecoveryRequestedAt: &requestedAt,
		GracePeriodDays:     gracePeriodDays,
	}
	reqID := uuid.New()
	f.requests.requests[reqID] = recovery.Request{
		ID:                reqID,
		LegacyLockerID:    lockerID,
		DelegateUserID:    delegateID,
		OwnerUserID:       ownerID,
		Status:            recovery.StatusPending,
		GracePeriodEndsAt: requestedAt.AddDate(0, 0, gracePeriodDays),
	}
	return lockerID
}

func TestProcessBatch_AdvancesElapsedLockers(t *testing.T) {
	f := newScanFixture(t)
	elapsed := f.addPendingLocker("expired@example.com", 14, 15*24*time.Hour)
	fresh := f.addPendingLocker("fresh@example.com", 14, 2*24*time.Hour)

	n, err := f.proc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	l, err := f.lockers.GetByID(context.Background(), elapsed)
	require.NoError(t, err)
	assert.Equal(t, locker.StatusGracePeriodExpired, l.RecoveryStatus)

	req, err := f.requests.GetActiveByLocker(context.Background(), elapsed)
	require.NoError(t, err)
	assert.Equal(t, recovery.StatusGracePeriodExpired, req.Status)

	l, err = f.lockers.GetByID(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, locker.StatusPending, l.RecoveryStatus)

	assert.Equal(t, 1, f.notifier.accessEmails["expired@example.com"])
	assert.Equal(t, 0, f.notifier.accessEmails["fresh@example.com"])
}

func TestProcessBatch_ExactBoundary(t *testing.T) {
	f := newScanFixture(t)
	f.addPendingLocker("boundary@example.com", 14, 14*24*time.Hour)

	n, err := f.proc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessBatch_NotifiesAtMostOnce(t *testing.T) {
	f := newScanFixture(t)
	f.addPendingLocker("once@example.com", 14, 20*24*time.Hour)

	n, err := f.proc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.proc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, 1, f.notifier.accessEmails["once@example.com"])
}

func TestProcessBatch_NoDelegate(t *testing.T) {
	f := newScanFixture(t)
	lockerID := f.addPendingLocker("gone@example.com", 14, 20*24*time.Hour)

	l := f.lockers.lockers[lockerID]
	l.DelegateUserID = uuid.NullUUID{}
	f.lockers.lockers[lockerID] = l

	// The locker still advances so it is not rescanned forever.
	n, err := f.proc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, f.notifier.accessEmails)

	got := f.lockers.lockers[lockerID]
	assert.Equal(t, locker.StatusGracePeriodExpired, got.RecoveryStatus)
}

func TestProcessBatch_Empty(t *testing.T) {
	f := newScanFixture(t)

	n, err := f.proc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
