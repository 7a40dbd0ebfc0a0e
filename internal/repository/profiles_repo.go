package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/startupops/startupops/internal/domain"
)

// ProfilesRepository handles profile persistence.
type ProfilesRepository struct {
	db *sql.DB
}

// NewProfilesRepository creates a new profiles repository.
func NewProfilesRepository(db *sql.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// Upsert inserts the profile or refreshes email/name for an existing one.
// Profiles mirror the identity provider, so the latest claims win.
func (r *ProfilesRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.CreatedAt, profile.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by user ID.
func (r *ProfilesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetByEmail retrieves a profile by email address.
func (r *ProfilesRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`
	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetByIDs retrieves profiles for the given user IDs, keyed by ID.
func (r *ProfilesRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Profile{}, nil
	}

	query := `
		SELECT id, email, full_name, created_at, updated_at
		FROM profiles
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make(map[uuid.UUID]*domain.Profile, len(ids))
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(&profile.ID, &profile.Email, &profile.FullName, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, err
		}
		profiles[profile.ID] = &profile
	}
	return profiles, rows.Err()
}

// UpdateName updates the display name.
func (r *ProfilesRepository) UpdateName(ctx context.Context, id uuid.UUID, fullName string) error {
	query := `
		UPDATE profiles
		SET full_name = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, fullName)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
