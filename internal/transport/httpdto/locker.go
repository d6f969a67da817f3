package httpdto

import (
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
)

type CreateLockerRequest struct {
	EncryptedVaultKey string `json:"encrypted_vault_key" binding:"required"`
	DelegateKeyWrap   string `json:"delegate_key_wrap"`
	DelegateUserID    string `json:"delegate_user_id"`
	GracePeriodDays   int    `json:"grace_period_days"`
}

type SetDelegateRequest struct {
	DelegateUserID string `json:"delegate_user_id"`
}

type SetGracePeriodRequest struct {
	GracePeriodDays int `json:"grace_period_days" binding:"required"`
}

type LockerResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	DelegateUserID      string     `json:"delegate_user_id,omitempty"`
	EncryptedVaultKey   string     `json:"encrypted_vault_key"`
	RecoveryStatus      string     `json:"recovery_status"`
	RecoveryRequestedAt *time.Time `json:"recovery_requested_at,omitempty"`
	GracePeriodDays     int        `json:"grace_period_days"`
	CreatedAt           time.Time  `json:"created_at"`
}

type RecoveryKeyResponse struct {
	DelegateKeyWrap string `json:"delegate_key_wrap"`
}

func FromLocker(l locker.LegacyLocker) LockerResponse {
	resp := LockerResponse{
		ID:                  l.ID.String(),
		UserID:              l.UserID.String(),
		EncryptedVaultKey:   l.EncryptedVaultKey,
		RecoveryStatus:      string(l.RecoveryStatus),
		RecoveryRequestedAt: l.RecoveryRequestedAt,
		GracePeriodDays:     l.GracePeriodDays,
		CreatedAt:           l.CreatedAt,
	}
	if l.DelegateUserID.Valid {
		resp.DelegateUserID = l.DelegateUserID.UUID.String()
	}
	return resp
}
