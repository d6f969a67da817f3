package repository

import (
	"context"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	"github.com/AssetDocs/legacylocker/internal/domain/profile"
	"github.com/AssetDocs/legacylocker/internal/domain/recovery"

	"github.com/google/uuid"
)

type LockerRepository interface {
	Create(ctx context.Context, l *locker.LegacyLocker) error
	GetByID(ctx context.Context, id uuid.UUID) (locker.LegacyLocker, error)
	GetByOwner(ctx context.Context, userID uuid.UUID) (locker.LegacyLocker, error)
	SetDelegate(ctx context.Context, id uuid.UUID, delegateUserID uuid.NullUUID) error
	SetGracePeriodDays(ctx context.Context, id uuid.UUID, days int) error

	// TransitionStatus flips recovery_status only when the row still holds
	// the expected status. Returns ErrInvalidState when the precondition
	// no longer holds.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to locker.RecoveryStatus) error

	// MarkRecoveryRequested stamps recovery_requested_at and flips the
	// locker into pending, conditional on no recovery being in flight.
	MarkRecoveryRequested(ctx context.Context, id uuid.UUID, requestedAt time.Time) error

	// ListGracePeriodElapsed returns lockers still awaiting an owner
	// response whose grace window ended at or before cutoff.
	ListGracePeriodElapsed(ctx context.Context, cutoff time.Time, limit int) ([]locker.LegacyLocker, error)
}

type RecoveryRequestRepository interface {
	Create(ctx context.Context, r *recovery.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (recovery.Request, error)
	GetActiveByLocker(ctx context.Context, lockerID uuid.UUID) (recovery.Request, error)

	// TransitionStatus is the conditional-update counterpart for requests.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to recovery.RequestStatus, respondedAt *time.Time) error

	// PromoteExpired moves every grace_period_expired request of the locker
	// to the given status, stamping responded_at.
	PromoteExpired(ctx context.Context, lockerID uuid.UUID, to recovery.RequestStatus, respondedAt time.Time) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
}
