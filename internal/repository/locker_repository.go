package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AssetDocs/legacylocker/internal/domain/locker"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
)

type lockerRepository struct {
	db DBTX
}

func NewLockerRepository(db DBTX) LockerRepository {
	return &lockerRepository{db: db}
}

const lockerColumns = `id, user_id, delegate_user_id, encrypted_vault_key, delegate_key_wrap, recovery_status, recovery_requested_at, grace_period_days, created_at, updated_at`

func (r *lockerRepository) Create(ctx context.Context, l *locker.LegacyLocker) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO legacy_lockers (`+lockerColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `,
		l.ID,
		l.UserID,
		l.DelegateUserID,
		l.EncryptedVaultKey,
		l.DelegateKeyWrap,
		l.RecoveryStatus,
		l.RecoveryRequestedAt,
		l.GracePeriodDays,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return locker_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *lockerRepository) GetByID(ctx context.Context, id uuid.UUID) (locker.LegacyLocker, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+lockerColumns+`
        FROM legacy_lockers
        WHERE id = $1
    `, id)
	return scanLocker(row)
}

func (r *lockerRepository) GetByOwner(ctx context.Context, userID uuid.UUID) (locker.LegacyLocker, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+lockerColumns+`
        FROM legacy_lockers
        WHERE user_id = $1
    `, userID)
	return scanLocker(row)
}

func (r *lockerRepository) SetDelegate(ctx context.Context, id uuid.UUID, delegateUserID uuid.NullUUID) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE legacy_lockers
        SET delegate_user_id = $1, updated_at = $2
        WHERE id = $3
    `, delegateUserID, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, locker_errors.ErrNotFound)
}

func (r *lockerRepository) SetGracePeriodDays(ctx context.Context, id uuid.UUID, days int) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE legacy_lockers
        SET grace_period_days = $1, updated_at = $2
        WHERE id = $3
    `, days, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, locker_errors.ErrNotFound)
}

func (r *lockerRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to locker.RecoveryStatus) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE legacy_lockers
        SET recovery_status = $1, updated_at = $2
        WHERE id = $3 AND recovery_status = $4
    `, to, time.Now(), id, from)
	if err != nil {
		return err
	}
	return requireRowAffected(res, locker_errors.ErrInvalidState)
}

func (r *lockerRepository) MarkRecoveryRequested(ctx context.Context, id uuid.UUID, requestedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE legacy_lockers
        SET recovery_status = $1, recovery_requested_at = $2, updated_at = $3
        WHERE id = $4 AND recovery_status NOT IN ($5, $6, $7)
    `, locker.StatusPending, requestedAt, time.Now(), id,
		locker.StatusPending, locker.StatusGracePeriodActive, locker.StatusGracePeriodExpired)
	if err != nil {
		return err
	}
	return requireRowAffected(res, locker_errors.ErrInvalidState)
}

func (r *lockerRepository) ListGracePeriodElapsed(ctx context.Context, cutoff time.Time, limit int) ([]locker.LegacyLocker, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+lockerColumns+`
        FROM legacy_lockers
        WHERE recovery_status IN ($1, $2)
          AND recovery_requested_at IS NOT NULL
          AND recovery_requested_at + make_interval(days => grace_period_days) <= $3
        ORDER BY recovery_requested_at ASC
        LIMIT $4
    `, locker.StatusPending, locker.StatusGracePeriodActive, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lockers []locker.LegacyLocker
	for rows.Next() {
		l, err := scanLockerRows(rows)
		if err != nil {
			return nil, err
		}
		lockers = append(lockers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lockers, nil
}

func scanLocker(row *sql.Row) (locker.LegacyLocker, error) {
	var l locker.LegacyLocker
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.DelegateUserID,
		&l.EncryptedVaultKey,
		&l.DelegateKeyWrap,
		&l.RecoveryStatus,
		&l.RecoveryRequestedAt,
		&l.GracePeriodDays,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return locker.LegacyLocker{}, locker_errors.ErrNotFound
		}
		return locker.LegacyLocker{}, err
	}
	return l, nil
}

func scanLockerRows(rows *sql.Rows) (locker.LegacyLocker, error) {
	var l locker.LegacyLocker
	err := rows.Scan(
		&l.ID,
		&l.UserID,
		&l.DelegateUserID,
		&l.EncryptedVaultKey,
		&l.DelegateKeyWrap,
		&l.RecoveryStatus,
		&l.RecoveryRequestedAt,
		&l.GracePeriodDays,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func requireRowAffected(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
