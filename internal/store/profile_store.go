package store

import (
	"context"
	"database/sql"
	"errors"

	"poolledger/internal/models"
)

// ProfileStore reads identity records created by the external identity
// provider. The ledger never writes profiles; it only resolves and checks
// roles.
type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) GetByID(ctx context.Context, profileID string) (*models.Profile, error) {
	var row models.Profile
	err := s.db.GetContext(ctx, &row, `
		SELECT id, role, telegram_id, display_name, created_at
		FROM profiles
		WHERE id = $1
	`, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("profile get by id", err)
	}
	return &row, nil
}

func (s *ProfileStore) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Profile, error) {
	var row models.Profile
	err := s.db.GetContext(ctx, &row, `
		SELECT id, role, telegram_id, display_name, created_at
		FROM profiles
		WHERE telegram_id = $1
	`, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("profile get by telegram id", err)
	}
	return &row, nil
}
