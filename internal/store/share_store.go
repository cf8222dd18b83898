package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"poolledger/internal/models"
)

type ShareStore struct {
	db DB
}

func NewShareStore(db DB) *ShareStore {
	return &ShareStore{db: db}
}

func (s *ShareStore) ListByCycle(ctx context.Context, cycleID string) ([]models.InvestorShare, error) {
	var rows []models.InvestorShare
	err := s.db.SelectContext(ctx, &rows, `
		SELECT investor_id, cycle_id, share_percentage, contribution_usdt, updated_at
		FROM investor_shares
		WHERE cycle_id = $1
		ORDER BY investor_id
	`, cycleID)
	if err != nil {
		return nil, wrapErr("share list by cycle", err)
	}
	return rows, nil
}

func (s *ShareStore) GetByInvestorAndCycle(ctx context.Context, investorID, cycleID string) (*models.InvestorShare, error) {
	var row models.InvestorShare
	err := s.db.GetContext(ctx, &row, `
		SELECT investor_id, cycle_id, share_percentage, contribution_usdt, updated_at
		FROM investor_shares
		WHERE investor_id = $1 AND cycle_id = $2
	`, investorID, cycleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("share get", err)
	}
	return &row, nil
}

// UpsertBatch writes all recomputed share rows in one statement so the cycle's
// share set changes atomically. No-op on an empty batch.
func (s *ShareStore) UpsertBatch(ctx context.Context, tx Execer, shares []models.InvestorShare) error {
	if len(shares) == 0 {
		return nil
	}
	values := make([]string, 0, len(shares))
	args := make([]any, 0, len(shares)*5)
	for i, share := range shares {
		base := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, share.InvestorID, share.CycleID, share.SharePercentage,
			share.ContributionUSDT, share.UpdatedAt)
	}
	query := `
		INSERT INTO investor_shares (investor_id, cycle_id, share_percentage, contribution_usdt, updated_at)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT (investor_id, cycle_id) DO UPDATE
		SET share_percentage = EXCLUDED.share_percentage,
		    contribution_usdt = EXCLUDED.contribution_usdt,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := tx.ExecContext(ctx, query, args...)
	return wrapErr("share upsert batch", err)
}
