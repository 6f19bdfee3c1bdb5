package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlevchenko/riskscan/internal/domain"
	"github.com/mlevchenko/riskscan/pkg/database"
)

// identityRepository implements IdentityRepository interface
type identityRepository struct {
	db *database.Postgres
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *database.Postgres) IdentityRepository {
	return &identityRepository{db: db}
}

const identityColumns = `id, external_id, access_token, refresh_token, expires_at, display_name, avatar_url, created_at`

// Upsert inserts the identity on first connect and refreshes it on
// every later one. Credentials are always overwritten; display name and
// avatar only when the new profile carries a non-empty value. The whole
// operation is a single statement, so readers never observe a half
// refreshed row.
func (r *identityRepository) Upsert(ctx context.Context, externalID string, tokens domain.TokenSet, profile domain.Profile) (*domain.Identity, error) {
	query := `
		INSERT INTO identities (id, external_id, access_token, refresh_token, expires_at, display_name, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		ON CONFLICT (external_id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at    = EXCLUDED.expires_at,
			display_name  = COALESCE(EXCLUDED.display_name, identities.display_name),
			avatar_url    = COALESCE(EXCLUDED.avatar_url, identities.avatar_url)
		RETURNING ` + identityColumns

	row := r.db.DB.QueryRowContext(ctx, query,
		uuid.New().String(),
		externalID,
		tokens.AccessToken,
		tokens.RefreshToken,
		tokens.ExpiresAt,
		profile.DisplayName,
		profile.AvatarURL,
		time.Now(),
	)

	identity, err := scanIdentity(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert identity: %w", err)
	}

	return identity, nil
}

// GetByID retrieves an identity by row id
func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	identity, err := scanIdentity(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("identity with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get identity by id: %w", err)
	}

	return identity, nil
}

// MostRecentlyConnected returns the identity with the latest creation
// order, used when an ingestion call carries no explicit identity.
func (r *identityRepository) MostRecentlyConnected(ctx context.Context) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities ORDER BY created_at DESC, id DESC LIMIT 1`

	identity, err := scanIdentity(r.db.DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no connected identity: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get most recently connected identity: %w", err)
	}

	return identity, nil
}

func scanIdentity(row *sql.Row) (*domain.Identity, error) {
	identity := &domain.Identity{}
	var (
		expiresAt   sql.NullTime
		displayName sql.NullString
		avatarURL   sql.NullString
	)

	err := row.Scan(
		&identity.ID,
		&identity.ExternalID,
		&identity.AccessToken,
		&identity.RefreshToken,
		&expiresAt,
		&displayName,
		&avatarURL,
		&identity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		identity.ExpiresAt = &expiresAt.Time
	}
	if displayName.Valid {
		identity.DisplayName = &displayName.String
	}
	if avatarURL.Valid {
		identity.AvatarURL = &avatarURL.String
	}

	return identity, nil
}
