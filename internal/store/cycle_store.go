package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"poolledger/internal/models"

	"github.com/shopspring/decimal"
)

type CycleStore struct {
	db DB
}

func NewCycleStore(db DB) *CycleStore {
	return &CycleStore{db: db}
}

const cycleColumns = `
	id, cycle_month, cycle_year, status,
	profit_total_usdt, investor_payout_usdt, reinvested_total_usdt, performance_fee_usdt,
	payout_summary, notes, opened_at, closed_at
`

// GetActive returns the most recently opened active cycle, or nil when the
// pool has no open accounting period.
func (s *CycleStore) GetActive(ctx context.Context) (*models.FundCycle, error) {
	var row models.FundCycle
	err := s.db.GetContext(ctx, &row, `
		SELECT `+cycleColumns+`
		FROM fund_cycles
		WHERE status = $1
		ORDER BY opened_at DESC
		LIMIT 1
	`, models.CycleStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("cycle get active", err)
	}
	return &row, nil
}

func (s *CycleStore) GetByID(ctx context.Context, cycleID string) (*models.FundCycle, error) {
	var row models.FundCycle
	err := s.db.GetContext(ctx, &row, `
		SELECT `+cycleColumns+`
		FROM fund_cycles
		WHERE id = $1
	`, cycleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("cycle get by id", err)
	}
	return &row, nil
}

func (s *CycleStore) Create(ctx context.Context, id string, month, year int, openedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fund_cycles (id, cycle_month, cycle_year, status, opened_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, month, year, models.CycleStatusActive, openedAt)
	return wrapErr("cycle create", err)
}

type CycleSettlementInput struct {
	Status              string
	ProfitTotalUSDT     decimal.Decimal
	InvestorPayoutUSDT  decimal.Decimal
	ReinvestedTotalUSDT decimal.Decimal
	PerformanceFeeUSDT  decimal.Decimal
	PayoutSummary       []byte
	Notes               *string
	ClosedAt            time.Time
}

// Close records the settlement totals and transitions the cycle out of its
// expected status in a single guarded update. Zero rows affected means the
// cycle was missing or no longer in expectedStatus.
func (s *CycleStore) Close(ctx context.Context, tx Execer, cycleID, expectedStatus string, input CycleSettlementInput) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE fund_cycles
		SET status = $1,
		    profit_total_usdt = $2,
		    investor_payout_usdt = $3,
		    reinvested_total_usdt = $4,
		    performance_fee_usdt = $5,
		    payout_summary = $6,
		    notes = COALESCE($7, notes),
		    closed_at = $8
		WHERE id = $9 AND status = $10
	`, input.Status, input.ProfitTotalUSDT, input.InvestorPayoutUSDT,
		input.ReinvestedTotalUSDT, input.PerformanceFeeUSDT, input.PayoutSummary,
		input.Notes, input.ClosedAt, cycleID, expectedStatus)
	if err != nil {
		return false, wrapErr("cycle close", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrapErr("cycle close", err)
	}
	return affected == 1, nil
}
