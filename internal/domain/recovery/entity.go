package recovery

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus tracks a single recovery attempt.
type RequestStatus string

const (
	StatusPending            RequestStatus = "pending"
	StatusAcknowledged       RequestStatus = "acknowledged"
	StatusApproved           RequestStatus = "approved"
	StatusRejected           RequestStatus = "rejected"
	StatusGracePeriodExpired RequestStatus = "grace_period_expired"
)

// Request represents the recovery_requests table. Rows are never deleted;
// they form the audit trail of every recovery attempt against a locker.
type Request struct {
	ID                uuid.UUID
	LegacyLockerID    uuid.UUID
	DelegateUserID    uuid.UUID
	OwnerUserID       uuid.UUID
	Relationship      string
	Reason            string
	DocumentationURL  string
	Status            RequestStatus
	GracePeriodEndsAt time.Time
	RespondedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Terminal reports whether the request can no longer transition.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusAcknowledged:
		return true
	}
	return false
}

// Active reports whether the request blocks submission of a new one.
func (s RequestStatus) Active() bool {
	return s == StatusPending
}
