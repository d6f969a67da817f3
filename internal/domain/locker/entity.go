package locker

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryStatus tracks where a locker sits in the recovery handoff.
type RecoveryStatus string

const (
	StatusNone                 RecoveryStatus = "none"
	StatusPending              RecoveryStatus = "pending"
	StatusGracePeriodActive    RecoveryStatus = "grace_period_active"
	StatusGracePeriodExpired   RecoveryStatus = "grace_period_expired"
	StatusDelegateAcknowledged RecoveryStatus = "delegate_acknowledged"
	StatusApproved             RecoveryStatus = "approved"
	StatusRejected             RecoveryStatus = "rejected"
)

const DefaultGracePeriodDays = 14

// LegacyLocker represents the legacy_lockers table. One row per owner.
// The vault key itself is never stored: only the two wrapped blobs are,
// one under the owner's master password and one under the delegate's
// recovery code (escrowed at setup time).
type LegacyLocker struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	DelegateUserID      uuid.NullUUID
	EncryptedVaultKey   string
	DelegateKeyWrap     string
	RecoveryStatus      RecoveryStatus
	RecoveryRequestedAt *time.Time
	GracePeriodDays     int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecoveryActive reports whether a recovery attempt is in flight.
func (l *LegacyLocker) RecoveryActive() bool {
	switch l.RecoveryStatus {
	case StatusPending, StatusGracePeriodActive, StatusGracePeriodExpired:
		return true
	}
	return false
}

// HandoffComplete reports whether the delegate may receive the escrowed
// key wrap.
func (l *LegacyLocker) HandoffComplete() bool {
	return l.RecoveryStatus == StatusApproved || l.RecoveryStatus == StatusDelegateAcknowledged
}

// GracePeriodElapsed reports whether the owner's response window has
// passed, relative to now.
func (l *LegacyLocker) GracePeriodElapsed(now time.Time) bool {
	if l.RecoveryRequestedAt == nil {
		return false
	}
	ends := l.RecoveryRequestedAt.AddDate(0, 0, l.GracePeriodDays)
	return !now.Before(ends)
}
