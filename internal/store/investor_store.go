package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"poolledger/internal/models"
)

type InvestorStore struct {
	db DB
}

func NewInvestorStore(db DB) *InvestorStore {
	return &InvestorStore{db: db}
}

func (s *InvestorStore) GetByProfile(ctx context.Context, profileID string) (*models.Investor, error) {
	var row models.Investor
	err := s.db.GetContext(ctx, &row, `
		SELECT id, profile_id, status, joined_at
		FROM investors
		WHERE profile_id = $1
	`, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("investor get by profile", err)
	}
	return &row, nil
}

func (s *InvestorStore) Create(ctx context.Context, id, profileID, status string, joinedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investors (id, profile_id, status, joined_at)
		VALUES ($1, $2, $3, $4)
	`, id, profileID, status, joinedAt)
	return wrapErr("investor create", err)
}
