package services

import (
	"context"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	"github.com/AssetDocs/legacylocker/internal/repository"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
)

type LockerService struct {
	lockerRepo repository.LockerRepository
}

func NewLockerService(lockerRepo repository.LockerRepository) *LockerService {
	return &LockerService{lockerRepo: lockerRepo}
}

type CreateLockerInput struct {
	EncryptedVaultKey string
	DelegateKeyWrap   string
	DelegateUserID    *uuid.UUID
	GracePeriodDays   int
}

// CreateLocker stores the owner's locker row with both escrowed key wraps.
// The server never sees the vault key: both blobs arrive already encrypted
// client-side.
func (s *LockerService) CreateLocker(ctx context.Context, in CreateLockerInput) (locker.LegacyLocker, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return locker.LegacyLocker{}, locker_errors.ErrUnauthorized
	}
	if in.EncryptedVaultKey == "" {
		return locker.LegacyLocker{}, locker_errors.ErrInvalidInput
	}

	days := in.GracePeriodDays
	if days == 0 {
		days = locker.DefaultGracePeriodDays
	}
	if days < 1 || days > 365 {
		return locker.LegacyLocker{}, locker_errors.ErrInvalidInput
	}

	delegate := uuid.NullUUID{}
	if in.DelegateUserID != nil {
		if *in.DelegateUserID == userID {
			return locker.LegacyLocker{}, locker_errors.ErrInvalidInput
		}
		delegate = uuid.NullUUID{UUID: *in.DelegateUserID, Valid: true}
	}

	now := time.Now()
	l := locker.LegacyLocker{
		ID:                uuid.New(),
		UserID:            userID,
		DelegateUserID:    delegate,
		EncryptedVaultKey: in.EncryptedVaultKey,
		DelegateKeyWrap:   in.DelegateKeyWrap,
		RecoveryStatus:    locker.StatusNone,
		GracePeriodDays:   days,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.lockerRepo.Create(ctx, &l); err != nil {
		return locker.LegacyLocker{}, err
	}
	return l, nil
}

// GetOwnLocker returns the caller's locker.
func (s *LockerService) GetOwnLocker(ctx context.Context) (locker.LegacyLocker, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return locker.LegacyLocker{}, locker_errors.ErrUnauthorized
	}
	return s.lockerRepo.GetByOwner(ctx, userID)
}

// SetDelegate designates or replaces the recovery delegate. Not allowed
// while a recovery attempt is in flight.
func (s *LockerService) SetDelegate(ctx context.Context, delegateUserID *uuid.UUID) error {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return locker_errors.ErrUnauthorized
	}
	l, err := s.lockerRepo.GetByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if l.RecoveryActive() {
		return locker_errors.ErrInvalidState
	}

	delegate := uuid.NullUUID{}
	if delegateUserID != nil {
		if *delegateUserID == userID {
			return locker_errors.ErrInvalidInput
		}
		delegate = uuid.NullUUID{UUID: *delegateUserID, Valid: true}
	}
	return s.lockerRepo.SetDelegate(ctx, l.ID, delegate)
}

// SetGracePeriod adjusts the owner's response window.
func (s *LockerService) SetGracePeriod(ctx context.Context, days int) error {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return locker_errors.ErrUnauthorized
	}
	if days < 1 || days > 365 {
		return locker_errors.ErrInvalidInput
	}
	l, err := s.lockerRepo.GetByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if l.RecoveryActive() {
		return locker_errors.ErrInvalidState
	}
	return s.lockerRepo.SetGracePeriodDays(ctx, l.ID, days)
}

// RecoveryKey releases the delegate-wrapped vault key blob. Only the
// locker's delegate may read it, and only after the handoff completed.
func (s *LockerService) RecoveryKey(ctx context.Context, lockerID uuid.UUID) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", locker_errors.ErrUnauthorized
	}
	l, err := s.lockerRepo.GetByID(ctx, lockerID)
	if err != nil {
		return "", err
	}
	if !l.DelegateUserID.Valid || l.DelegateUserID.UUID != userID {
		return "", locker_errors.ErrForbidden
	}
	if !l.HandoffComplete() {
		return "", locker_errors.ErrInvalidState
	}
	if l.DelegateKeyWrap == "" {
		return "", locker_errors.ErrNotFound
	}
	return l.DelegateKeyWrap, nil
}
