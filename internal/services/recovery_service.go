package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	"github.com/AssetDocs/legacylocker/internal/domain/recovery"
	"github.com/AssetDocs/legacylocker/internal/notify"
	"github.com/AssetDocs/legacylocker/internal/repository"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"
	"github.com/AssetDocs/legacylocker/pkg/logger"

	"github.com/google/uuid"
)

// RecoveryService implements the recovery request state machine:
// submit (delegate) -> respond (owner) or grace-period expiry (scanner)
// -> acknowledge (delegate).
type RecoveryService struct {
	db          repository.DBTX
	lockerRepo  repository.LockerRepository
	requestRepo repository.RecoveryRequestRepository
	profileRepo repository.ProfileRepository
	notifier    notify.Notifier
	logger      *logger.Logger
	clock       func() time.Time
}

func NewRecoveryService(
	db repository.DBTX,
	lockerRepo repository.LockerRepository,
	requestRepo repository.RecoveryRequestRepository,
	profileRepo repository.ProfileRepository,
	notifier notify.Notifier,
	l *logger.Logger,
) *RecoveryService {
	return &RecoveryService{
		db:          db,
		lockerRepo:  lockerRepo,
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		logger:      l,
		clock:       time.Now,
	}
}

type SubmitInput struct {
	LockerID         uuid.UUID
	Relationship     string
	Reason           string
	DocumentationURL string
}

type RespondAction string

const (
	ActionApprove RespondAction = "approve"
	ActionReject  RespondAction = "reject"
)

// inTx runs fn against transaction-scoped repositories. When the service
// was built without a db handle (tests), fn runs against the injected
// repositories directly.
func (s *RecoveryService) inTx(ctx context.Context, fn func(lr repository.LockerRepository, rr repository.RecoveryRequestRepository) error) error {
	if s.db == nil {
		return fn(s.lockerRepo, s.requestRepo)
	}
	return repository.WithTx(ctx, s.db, func(tx repository.DBTX) error {
		return fn(repository.NewLockerRepository(tx), repository.NewRecoveryRequestRepository(tx))
	})
}

// Submit files a recovery request against a locker. Only the designated
// delegate may call it, and only while no other request is in flight.
func (s *RecoveryService) Submit(ctx context.Context, in SubmitInput) (recovery.Request, error) {
	callerID, ok := UserIDFromContext(ctx)
	if !ok {
		return recovery.Request{}, locker_errors.ErrUnauthorized
	}

	l, err := s.lockerRepo.GetByID(ctx, in.LockerID)
	if err != nil {
		return recovery.Request{}, err
	}
	if !l.DelegateUserID.Valid || l.DelegateUserID.UUID != callerID {
		return recovery.Request{}, locker_errors.ErrForbidden
	}
	if l.RecoveryActive() {
		return recovery.Request{}, locker_errors.ErrInvalidState
	}

	now := s.clock()
	req := recovery.Request{
		ID:                uuid.New(),
		LegacyLockerID:    l.ID,
		DelegateUserID:    callerID,
		OwnerUserID:       l.UserID,
		Relationship:      in.Relationship,
		Reason:            in.Reason,
		DocumentationURL:  in.DocumentationURL,
		Status:            recovery.StatusPending,
		GracePeriodEndsAt: now.AddDate(0, 0, l.GracePeriodDays),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.inTx(ctx, func(lr repository.LockerRepository, rr repository.RecoveryRequestRepository) error {
		if err := rr.Create(ctx, &req); err != nil {
			return err
		}
		return lr.MarkRecoveryRequested(ctx, l.ID, now)
	})
	if err != nil {
		return recovery.Request{}, err
	}

	// Owner notification is best-effort: the state change stands even if
	// the email never leaves.
	s.notifyOwnerOfRequest(ctx, l, req)

	return req, nil
}

// Respond records the owner's approve/reject decision within the grace
// period. Responding to an already-terminal request fails.
func (s *RecoveryService) Respond(ctx context.Context, requestID uuid.UUID, action RespondAction) (recovery.Request, error) {
	callerID, ok := UserIDFromContext(ctx)
	if !ok {
		return recovery.Request{}, locker_errors.ErrUnauthorized
	}
	if action != ActionApprove && action != ActionReject {
		return recovery.Request{}, locker_errors.ErrInvalidInput
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return recovery.Request{}, err
	}
	if req.OwnerUserID != callerID {
		return recovery.Request{}, locker_errors.ErrForbidden
	}
	if req.Status != recovery.StatusPending {
		return recovery.Request{}, locker_errors.ErrInvalidState
	}

	now := s.clock()
	reqStatus := recovery.StatusApproved
	lockerStatus := locker.StatusApproved
	if action == ActionReject {
		reqStatus = recovery.StatusRejected
		lockerStatus = locker.StatusRejected
	}

	err = s.inTx(ctx, func(lr repository.LockerRepository, rr repository.RecoveryRequestRepository) error {
		if err := rr.TransitionStatus(ctx, req.ID, recovery.StatusPending, reqStatus, &now); err != nil {
			return err
		}
		return lr.TransitionStatus(ctx, req.LegacyLockerID, locker.StatusPending, lockerStatus)
	})
	if err != nil {
		return recovery.Request{}, err
	}

	req.Status = reqStatus
	req.RespondedAt = &now

	s.notifyDelegateOfResponse(ctx, req, action)

	return req, nil
}

// Acknowledge is the final handoff step after the grace period expired
// without an owner response. Caller must be the delegate the expiry
// notification named.
func (s *RecoveryService) Acknowledge(ctx context.Context, requestID uuid.UUID) (string, error) {
	callerID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", locker_errors.ErrUnauthorized
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}

	l, err := s.lockerRepo.GetByID(ctx, req.LegacyLockerID)
	if err != nil {
		return "", err
	}
	if req.DelegateUserID != callerID || !l.DelegateUserID.Valid || l.DelegateUserID.UUID != callerID {
		return "", locker_errors.ErrForbidden
	}
	if req.Status != recovery.StatusGracePeriodExpired {
		return "", locker_errors.ErrInvalidState
	}

	now := s.clock()
	err = s.inTx(ctx, func(lr repository.LockerRepository, rr repository.RecoveryRequestRepository) error {
		if err := lr.TransitionStatus(ctx, l.ID, locker.StatusGracePeriodExpired, locker.StatusDelegateAcknowledged); err != nil {
			return err
		}
		return rr.PromoteExpired(ctx, l.ID, recovery.StatusAcknowledged, now)
	})
	if err != nil {
		return "", err
	}

	ownerName := s.profileName(ctx, l.UserID)
	return fmt.Sprintf("Access to %s's Legacy Locker confirmed", ownerName), nil
}

// ActiveRequest returns the in-flight request for a locker, readable by
// the owner and the delegate only.
func (s *RecoveryService) ActiveRequest(ctx context.Context, lockerID uuid.UUID) (recovery.Request, error) {
	callerID, ok := UserIDFromContext(ctx)
	if !ok {
		return recovery.Request{}, locker_errors.ErrUnauthorized
	}
	l, err := s.lockerRepo.GetByID(ctx, lockerID)
	if err != nil {
		return recovery.Request{}, err
	}
	isOwner := l.UserID == callerID
	isDelegate := l.DelegateUserID.Valid && l.DelegateUserID.UUID == callerID
	if !isOwner && !isDelegate {
		return recovery.Request{}, locker_errors.ErrForbidden
	}
	return s.requestRepo.GetActiveByLocker(ctx, lockerID)
}

func (s *RecoveryService) notifyOwnerOfRequest(ctx context.Context, l locker.LegacyLocker, req recovery.Request) {
	owner, err := s.profileRepo.GetByID(ctx, l.UserID)
	if err != nil {
		s.logWarn("recovery request %s: owner profile lookup failed: %v", req.ID, err)
		return
	}
	delegateName := s.profileName(ctx, req.DelegateUserID)
	if err := s.notifier.SendRecoveryRequestEmail(ctx, owner.Email, owner.FullName, delegateName, l.GracePeriodDays, req.Reason); err != nil {
		s.logWarn("recovery request %s: owner notification failed: %v", req.ID, err)
	}
}

func (s *RecoveryService) notifyDelegateOfResponse(ctx context.Context, req recovery.Request, action RespondAction) {
	delegate, err := s.profileRepo.GetByID(ctx, req.DelegateUserID)
	if err != nil {
		s.logWarn("recovery request %s: delegate profile lookup failed: %v", req.ID, err)
		return
	}
	ownerName := s.profileName(ctx, req.OwnerUserID)
	if action == ActionApprove {
		err = s.notifier.SendRecoveryApprovedEmail(ctx, delegate.Email, delegate.FullName, ownerName)
	} else {
		err = s.notifier.SendRecoveryRejectedEmail(ctx, delegate.Email, delegate.FullName, ownerName)
	}
	if err != nil {
		s.logWarn("recovery request %s: delegate notification failed: %v", req.ID, err)
	}
}

func (s *RecoveryService) profileName(ctx context.Context, id uuid.UUID) string {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil || p.FullName == "" {
		return "the account owner"
	}
	return p.FullName
}

func (s *RecoveryService) logWarn(template string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warnf(template, args...)
	}
}

// SetClock overrides the service clock in tests.
func (s *RecoveryService) SetClock(clock func() time.Time) {
	s.clock = clock
}
