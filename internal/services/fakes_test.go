package services

import (
	"context"
	"sync"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	"github.com/AssetDocs/legacylocker/internal/domain/profile"
	"github.com/AssetDocs/legacylocker/internal/domain/recovery"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
)

type fakeLockerRepo struct {
	mu      sync.Mutex
	lockers map[uuid.UUID]locker.LegacyLocker
}

func newFakeLockerRepo() *fakeLockerRepo {
	return &fakeLockerRepo{lockers: map[uuid.UUID]locker.LegacyLocker{}}
}

func (r *fakeLockerRepo) Create(_ context.Context, l *locker.LegacyLocker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.lockers {
		if existing.UserID == l.UserID {
			return locker_errors.ErrAlreadyExists
		}
	}
	r.lockers[l.ID] = *l
	return nil
}

func (r *fakeLockerRepo) GetByID(_ context.Context, id uuid.UUID) (locker.LegacyLocker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[id]
	if !ok {
		return locker.LegacyLocker{}, locker_errors.ErrNotFound
	}
	return l, nil
}

func (r *fakeLockerRepo) GetByOwner(_ context.Context, userID uuid.UUID) (locker.LegacyLocker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lockers {
		if l.UserID == userID {
			return l, nil
		}
	}
	return locker.LegacyLocker{}, locker_errors.ErrNotFound
}

func (r *fakeLockerRepo) SetDelegate(_ context.Context, id uuid.UUID, delegateUserID uuid.NullUUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[id]
	if !ok {
		return locker_errors.ErrNotFound
	}
	l.DelegateUserID = delegateUserID
	r.lockers[id] = l
	return nil
}

func (r *fakeLockerRepo) SetGracePeriodDays(_ context.Context, id uuid.UUID, days int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[id]
	if !ok {
		return locker_errors.ErrNotFound
	}
	l.GracePeriodDays = days
	r.lockers[id] = l
	return nil
}

func (r *fakeLockerRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to locker.RecoveryStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[id]
	if !ok || l.RecoveryStatus != from {
		return locker_errors.ErrInvalidState
	}
	l.RecoveryStatus = to
	r.lockers[id] = l
	return nil
}

func (r *fakeLockerRepo) MarkRecoveryRequested(_ context.Context, id uuid.UUID, requestedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lockers[id]
	if !ok {
		return locker_errors.ErrNotFound
	}
	if l.RecoveryActive() {
		return locker_errors.ErrInvalidState
	}
	l.RecoveryStatus = locker.StatusPending
	l.RecoveryRequestedAt = &requestedAt
	r.lockers[id] = l
	return nil
}

func (r *fakeLockerRepo) ListGracePeriodElapsed(_ context.Context, cutoff time.Time, limit int) ([]locker.LegacyLocker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []locker.LegacyLocker
	for _, l := range r.lockers {
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

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]recovery.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[uuid.UUID]recovery.Request{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *recovery.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.LegacyLockerID == req.LegacyLockerID && !existing.Status.Terminal() {
			return locker_errors.ErrInvalidState
		}
	}
	r.requests[req.ID] = *req
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (recovery.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return recovery.Request{}, locker_errors.ErrNotFound
	}
	return req, nil
}

func (r *fakeRequestRepo) GetActiveByLocker(_ context.Context, lockerID uuid.UUID) (recovery.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.LegacyLockerID == lockerID &&
			(req.Status == recovery.StatusPending || req.Status == recovery.StatusGracePeriodExpired) {
			return req, nil
		}
	}
	return recovery.Request{}, locker_errors.ErrNotFound
}

func (r *fakeRequestRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to recovery.RequestStatus, respondedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return locker_errors.ErrInvalidState
	}
	req.Status = to
	req.RespondedAt = respondedAt
	r.requests[id] = req
	return nil
}

func (r *fakeRequestRepo) PromoteExpired(_ context.Context, lockerID uuid.UUID, to recovery.RequestStatus, respondedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, req := range r.requests {
		if req.LegacyLockerID == lockerID && req.Status == recovery.StatusGracePeriodExpired {
			req.Status = to
			req.RespondedAt = &respondedAt
			r.requests[id] = req
		}
	}
	return nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]profile.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]profile.Profile{}}
}

func (r *fakeProfileRepo) add(id uuid.UUID, email, name string) {
	r.profiles[id] = profile.Profile{ID: id, Email: email, FullName: name, CreatedAt: time.Now()}
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (profile.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, locker_errors.ErrNotFound
	}
	return p, nil
}

type recordingNotifier struct {
	mu            sync.Mutex
	requestEmails int
	approvals     int
	rejections    int
	accessEmails  int
}

func (n *recordingNotifier) SendRecoveryRequestEmail(context.Context, string, string, string, int, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requestEmails++
	return nil
}

func (n *recordingNotifier) SendRecoveryApprovedEmail(context.Context, string, string, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvals++
	return nil
}

func (n *recordingNotifier) SendRecoveryRejectedEmail(context.Context, string, string, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejections++
	return nil
}

func (n *recordingNotifier) SendDelegateAccessEmail(context.Context, string, string, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accessEmails++
	return nil
}
