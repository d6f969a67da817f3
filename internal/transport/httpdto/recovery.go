package httpdto

import (
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/recovery"
)

type SubmitRecoveryRequest struct {
	LockerID         string `json:"locker_id" binding:"required"`
	Relationship     string `json:"relationship"`
	Reason           string `json:"reason" binding:"required"`
	DocumentationURL string `json:"documentation_url"`
}

type RespondRecoveryRequest struct {
	Action string `json:"action" binding:"required"`
}

type PresignDocumentRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type RecoveryRequestResponse struct {
	ID                string     `json:"id"`
	LegacyLockerID    string     `json:"legacy_locker_id"`
	DelegateUserID    string     `json:"delegate_user_id"`
	OwnerUserID       string     `json:"owner_user_id"`
	Relationship      string     `json:"relationship,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	DocumentationURL  string     `json:"documentation_url,omitempty"`
	Status            string     `json:"status"`
	GracePeriodEndsAt time.Time  `json:"grace_period_ends_at"`
	RespondedAt       *time.Time `json:"responded_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type AcknowledgeResponse struct {
	Message string `json:"message"`
}

func FromRecoveryRequest(r recovery.Request) RecoveryRequestResponse {
	return RecoveryRequestResponse{
		ID:                r.ID.String(),
		LegacyLockerID:    r.LegacyLockerID.String(),
		DelegateUserID:    r.DelegateUserID.String(),
		OwnerUserID:       r.OwnerUserID.String(),
		Relationship:      r.Relationship,
		Reason:            r.Reason,
		DocumentationURL:  r.DocumentationURL,
		Status:            string(r.Status),
		GracePeriodEndsAt: r.GracePeriodEndsAt,
		RespondedAt:       r.RespondedAt,
		CreatedAt:         r.CreatedAt,
	}
}
