package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AssetDocs/legacylocker/internal/domain/profile"
	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/google/uuid"
)

type profileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	var p profile.Profile
	err := r.db.QueryRowContext(ctx, `
        SELECT id, email, full_name, created_at
        FROM profiles
        WHERE id = $1
    `, id).Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, locker_errors.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}
