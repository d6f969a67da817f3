package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/recovery"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
)

type recoveryRequestRepository struct {
	db DBTX
}

func NewRecoveryRequestRepository(db DBTX) RecoveryRequestRepository {
	return &recoveryRequestRepository{db: db}
}

const requestColumns = `id, legacy_locker_id, delegate_user_id, owner_user_id, relationship, reason, documentation_url, status, grace_period_ends_at, responded_at, created_at, updated_at`

func (r *recoveryRequestRepository) Create(ctx context.Context, req *recovery.Request) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO recovery_requests (`+requestColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `,
		req.ID,
		req.LegacyLockerID,
		req.DelegateUserID,
		req.OwnerUserID,
		req.Relationship,
		req.Reason,
		req.DocumentationURL,
		req.Status,
		req.GracePeriodEndsAt,
		req.RespondedAt,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on active requests trips here when a
		// second submit races the first one past the application check.
		if isUniqueViolation(err) {
			return locker_errors.ErrInvalidState
		}
		return err
	}
	return nil
}

func (r *recoveryRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (recovery.Request, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+requestColumns+`
        FROM recovery_requests
        WHERE id = $1
    `, id)
	return scanRequest(row)
}

func (r *recoveryRequestRepository) GetActiveByLocker(ctx context.Context, lockerID uuid.UUID) (recovery.Request, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+requestColumns+`
        FROM recovery_requests
        WHERE legacy_locker_id = $1 AND status IN ($2, $3)
        ORDER BY created_at DESC
        LIMIT 1
    `, lockerID, recovery.StatusPending, recovery.StatusGracePeriodExpired)
	return scanRequest(row)
}

func (r *recoveryRequestRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to recovery.RequestStatus, respondedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE recovery_requests
        SET status = $1, responded_at = $2, updated_at = $3
        WHERE id = $4 AND status = $5
    `, to, respondedAt, time.Now(), id, from)
	if err != nil {
		return err
	}
	return requireRowAffected(res, locker_errors.ErrInvalidState)
}

func (r *recoveryRequestRepository) PromoteExpired(ctx context.Context, lockerID uuid.UUID, to recovery.RequestStatus, respondedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE recovery_requests
        SET status = $1, responded_at = $2, updated_at = $3
        WHERE legacy_locker_id = $4 AND status = $5
    `, to, respondedAt, time.Now(), lockerID, recovery.StatusGracePeriodExpired)
	return err
}

func scanRequest(row *sql.Row) (recovery.Request, error) {
	var req recovery.Request
	err := row.Scan(
		&req.ID,
		&req.LegacyLockerID,
		&req.DelegateUserID,
		&req.OwnerUserID,
		&req.Relationship,
		&req.Reason,
		&req.DocumentationURL,
		&req.Status,
		&req.GracePeriodEndsAt,
		&req.RespondedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return recovery.Request{}, locker_errors.ErrNotFound
		}
		return recovery.Request{}, err
	}
	return req, nil
}
