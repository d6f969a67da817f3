package scanner

import (
	"context"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	"github.com/AssetDocs/legacylocker/internal/domain/recovery"
	"github.com/AssetDocs/legacylocker/internal/notify"
	"github.com/AssetDocs/legacylocker/internal/repository"
	"github.com/AssetDocs/legacylocker/pkg/logger"
)

// Processor sweeps lockers whose grace period elapsed without an owner
// response and moves them to delegate notification. Safe to run
// repeatedly: the status flip is a conditional update and happens before
// the notification, so a locker is notified at most once.
type Processor struct {
	lockerRepo  repository.LockerRepository
	requestRepo repository.RecoveryRequestRepository
	profileRepo repository.ProfileRepository
	notifier    notify.Notifier
	logger      *logger.Logger
	clock       func() time.Time
	batchSize   int
}

func NewProcessor(
	lockerRepo repository.LockerRepository,
	requestRepo repository.RecoveryRequestRepository,
	profileRepo repository.ProfileRepository,
	notifier notify.Notifier,
	l *logger.Logger,
	batchSize int,
) *Processor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Processor{
		lockerRepo:  lockerRepo,
		requestRepo: requestRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		logger:      l,
		clock:       time.Now,
		batchSize:   batchSize,
	}
}

// ProcessBatch runs one sweep and returns the number of lockers advanced.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	now := p.clock()
	lockers, err := p.lockerRepo.ListGracePeriodElapsed(ctx, now, p.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, l := range lockers {
		if p.processLocker(ctx, l, now) {
			processed++
		}
	}
	return processed, nil
}

func (p *Processor) processLocker(ctx context.Context, l locker.LegacyLocker, now time.Time) bool {
	// Flip first. A concurrent run losing this conditional update skips
	// the locker entirely, which is what keeps notification at-most-once.
	if err := p.lockerRepo.TransitionStatus(ctx, l.ID, l.RecoveryStatus, locker.StatusGracePeriodExpired); err != nil {
		p.logWarn("scan: locker %s already advanced: %v", l.ID, err)
		return false
	}

	req, err := p.requestRepo.GetActiveByLocker(ctx, l.ID)
	if err == nil && req.Status == recovery.StatusPending {
		if err := p.requestRepo.TransitionStatus(ctx, req.ID, recovery.StatusPending, recovery.StatusGracePeriodExpired, nil); err != nil {
			p.logWarn("scan: request %s transition failed: %v", req.ID, err)
		}
	} else if err != nil {
		p.logWarn("scan: locker %s has no active request: %v", l.ID, err)
	}

	p.notifyDelegate(ctx, l)
	return true
}

func (p *Processor) notifyDelegate(ctx context.Context, l locker.LegacyLocker) {
	if !l.DelegateUserID.Valid {
		p.logWarn("scan: locker %s has no delegate to notify", l.ID)
		return
	}
	delegate, err := p.profileRepo.GetByID(ctx, l.DelegateUserID.UUID)
	if err != nil {
		p.logWarn("scan: locker %s delegate profile lookup failed: %v", l.ID, err)
		return
	}
	ownerName := "the account owner"
	if owner, err := p.profileRepo.GetByID(ctx, l.UserID); err == nil && owner.FullName != "" {
		ownerName = owner.FullName
	}
	if err := p.notifier.SendDelegateAccessEmail(ctx, delegate.Email, delegate.FullName, ownerName); err != nil {
		p.logWarn("scan: locker %s delegate notification failed: %v", l.ID, err)
	}
}

func (p *Processor) logWarn(template string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warnf(template, args...)
	}
}

// SetClock overrides the processor clock in tests.
func (p *Processor) SetClock(clock func() time.Time) {
	p.clock = clock
}
