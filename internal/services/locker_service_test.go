package services

import (
	"context"
	"testing"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLocker(t *testing.T) {
	repo := newFakeLockerRepo()
	svc := NewLockerService(repo)
	ownerID := uuid.New()
	delegateID := uuid.New()
	ctx := WithUserContext(context.Background(), ownerID)

	l, err := svc.CreateLocker(ctx, CreateLockerInput{
		EncryptedVaultKey: "owner-wrap",
		DelegateKeyWrap:   "delegate-wrap",
		DelegateUserID:    &delegateID,
	})
	require.NoError(t, err)
	assert.Equal(t, ownerID, l.UserID)
	assert.Equal(t, locker.StatusNone, l.RecoveryStatus)
	assert.Equal(t, locker.DefaultGracePeriodDays, l.GracePeriodDays)
	require.True(t, l.DelegateUserID.Valid)
	assert.Equal(t, delegateID, l.DelegateUserID.UUID)

	// One locker per owner.
	_, err = svc.CreateLocker(ctx, CreateLockerInput{EncryptedVaultKey: "owner-wrap"})
	assert.ErrorIs(t, err, locker_errors.ErrAlreadyExists)
}

func TestCreateLocker_Validation(t *testing.T) {
	svc := NewLockerService(newFakeLockerRepo())
	ownerID := uuid.New()
	ctx := WithUserContext(context.Background(), ownerID)

	_, err := svc.CreateLocker(ctx, CreateLockerInput{})
	assert.ErrorIs(t, err, locker_errors.ErrInvalidInput)

	_, err = svc.CreateLocker(ctx, CreateLockerInput{EncryptedVaultKey: "w", GracePeriodDays: 400})
	assert.ErrorIs(t, err, locker_errors.ErrInvalidInput)

	// Owner cannot be their own delegate.
	_, err = svc.CreateLocker(ctx, CreateLockerInput{EncryptedVaultKey: "w", DelegateUserID: &ownerID})
	assert.ErrorIs(t, err, locker_errors.ErrInvalidInput)

	_, err = svc.CreateLocker(context.Background(), CreateLockerInput{EncryptedVaultKey: "w"})
	assert.ErrorIs(t, err, locker_errors.ErrUnauthorized)
}

func TestSetDelegate(t *testing.T) {
	repo := newFakeLockerRepo()
	svc := NewLockerService(repo)
	ownerID := uuid.New()
	ctx := WithUserContext(context.Background(), ownerID)

	created, err := svc.CreateLocker(ctx, CreateLockerInput{EncryptedVaultKey: "w"})
	require.NoError(t, err)

	delegateID := uuid.New()
	require.NoError(t, svc.SetDelegate(ctx, &delegateID))

	l, err := svc.GetOwnLocker(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, l.ID)
	require.True(t, l.DelegateUserID.Valid)
	assert.Equal(t, delegateID, l.DelegateUserID.UUID)

	// Clearing the delegate.
	require.NoError(t, svc.SetDelegate(ctx, nil))
	l, err = svc.GetOwnLocker(ctx)
	require.NoError(t, err)
	assert.False(t, l.DelegateUserID.Valid)

	assert.ErrorIs(t, svc.SetDelegate(ctx, &ownerID), locker_errors.ErrInvalidInput)
}

func TestSetDelegate_BlockedDuringRecovery(t *testing.T) {
	repo := newFakeLockerRepo()
	svc := NewLockerService(repo)
	ownerID := uuid.New()
	ctx := WithUserContext(context.Background(), ownerID)

	l, err := svc.CreateLocker(ctx, CreateLockerInput{EncryptedVaultKey: "w"})
	require.NoError(t, err)
	require.NoError(t, repo.TransitionStatus(ctx, l.ID, locker.StatusNone, locker.StatusPending))

	delegateID := uuid.New()
	assert.ErrorIs(t, svc.SetDelegate(ctx, &delegateID), locker_errors.ErrInvalidState)
	assert.ErrorIs(t, svc.SetGracePeriod(ctx, 30), locker_errors.ErrInvalidState)
}

func TestSetGracePeriod(t *testing.T) {
	repo := newFakeLockerRepo()
	svc := NewLockerService(repo)
	ctx := WithUserContext(context.Background(), uuid.New())

	_, err := svc.CreateLocker(ctx, CreateLockerInput{EncryptedVaultKey: "w"})
	require.NoError(t, err)

	require.NoError(t, svc.SetGracePeriod(ctx, 30))
	l, err := svc.GetOwnLocker(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, l.GracePeriodDays)

	assert.ErrorIs(t, svc.SetGracePeriod(ctx, 0), locker_errors.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetGracePeriod(ctx, 366), locker_errors.ErrInvalidInput)
}

func TestRecoveryKey(t *testing.T) {
	repo := newFakeLockerRepo()
	svc := NewLockerService(repo)
	ownerID := uuid.New()
	delegateID := uuid.New()
	ownerCtx := WithUserContext(context.Background(), ownerID)
	delegateCtx := WithUserContext(context.Background(), delegateID)

	l, err := svc.CreateLocker(ownerCtx, CreateLockerInput{
		EncryptedVaultKey: "owner-wrap",
		DelegateKeyWrap:   "delegate-wrap",
		DelegateUserID:    &delegateID,
	})
	require.NoError(t, err)

	// Locked until the handoff completes.
	_, err = svc.RecoveryKey(delegateCtx, l.ID)
	assert.ErrorIs(t, err, locker_errors.ErrInvalidState)

	require.NoError(t, repo.TransitionStatus(ownerCtx, l.ID, locker.StatusNone, locker.StatusApproved))

	wrap, err := svc.RecoveryKey(delegateCtx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "delegate-wrap", wrap)

	// Never released to anyone but the delegate, owner included.
	_, err = svc.RecoveryKey(ownerCtx, l.ID)
	assert.ErrorIs(t, err, locker_errors.ErrForbidden)
}
